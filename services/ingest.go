package services

import (
	"context"
	"fmt"
	"time"

	"whatsapp-reseller/models"
	"whatsapp-reseller/utils"
)

// MediaDownloader is the transport capability for pulling media bytes.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, messageID string) (*models.DownloadedMedia, error)
}

// MediaSaver persists downloaded media to the scratch directory and
// returns the local path.
type MediaSaver interface {
	Save(data []byte, mimetype string) (string, error)
}

// Ingestor is the gate between the transport layer and the grouping
// buffer: it classifies captions, downloads media, and buffers the
// fragments that survive.
type Ingestor struct {
	filter     *GadgetFilter
	buffer     *MessageBuffer
	downloader MediaDownloader
	saver      MediaSaver
	stats      *Stats
	logger     *utils.Logger
	retry      *utils.RetryConfig
}

// NewIngestor wires an ingestion gate.
func NewIngestor(filter *GadgetFilter, buffer *MessageBuffer, downloader MediaDownloader,
	saver MediaSaver, stats *Stats, logger *utils.Logger, retry *utils.RetryConfig) *Ingestor {

	return &Ingestor{
		filter:     filter,
		buffer:     buffer,
		downloader: downloader,
		saver:      saver,
		stats:      stats,
		logger:     logger,
		retry:      retry,
	}
}

// Handle processes one inbound vendor message. Every outcome here is
// non-fatal: rejected captions and broken media are counted or logged
// and the pipeline keeps watching.
func (in *Ingestor) Handle(ctx context.Context, msg models.InboundMessage) {
	in.stats.IncTotalSeen()

	if msg.Body != "" && !msg.HasMedia {
		in.handleCaption(msg)
		return
	}

	if msg.HasMedia {
		in.handleMedia(ctx, msg)
	}
}

func (in *Ingestor) handleCaption(msg models.InboundMessage) {
	in.logger.Info("[ingest] Caption: %s", utils.Truncate(msg.Body, 60))

	if !in.filter.IsGadget(msg.Body) {
		in.stats.IncNonGadgetsSkipped()
		in.logger.Info("[ingest] Not a gadget — skipping")
		return
	}

	in.stats.IncGadgetsDetected()
	in.buffer.Push(models.BufferedMessage{
		Kind:       models.KindCaption,
		Content:    msg.Body,
		ObservedAt: time.Now(),
	})
}

func (in *Ingestor) handleMedia(ctx context.Context, msg models.InboundMessage) {
	// Videos are only flagged, never stored: the forwarder sends an
	// alert instead of the file.
	if msg.MediaKind == models.KindVideo {
		in.logger.Info("[ingest] Video received")
		in.buffer.Push(models.BufferedMessage{
			Kind:       models.KindVideo,
			ObservedAt: time.Now(),
		})
		return
	}

	path, err := in.downloadAndSave(ctx, msg)
	if err != nil {
		in.logger.Warn("[ingest] Media dropped: %v", err)
		return
	}

	in.logger.Info("[ingest] Image saved: %s", path)
	in.buffer.Push(models.BufferedMessage{
		Kind:       models.KindImage,
		Content:    path,
		ObservedAt: time.Now(),
	})
}

func (in *Ingestor) downloadAndSave(ctx context.Context, msg models.InboundMessage) (string, error) {
	var media *models.DownloadedMedia

	err := in.retry.Do("download-media", func() error {
		m, err := in.downloader.DownloadMedia(ctx, msg.ID)
		if err != nil {
			return err
		}
		if m == nil || m.Mimetype == "" || len(m.Data) == 0 {
			return fmt.Errorf("incomplete media for message %s", msg.ID)
		}
		media = m
		return nil
	})
	if err != nil {
		return "", err
	}

	return in.saver.Save(media.Data, media.Mimetype)
}
