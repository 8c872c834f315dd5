package models

import "time"

// MessageKind classifies one buffered fragment of a vendor post.
type MessageKind string

const (
	KindCaption MessageKind = "caption"
	KindImage   MessageKind = "image"
	KindVideo   MessageKind = "video"
)

// BufferedMessage is one observed post fragment awaiting grouping.
// Content holds the caption text for KindCaption, the local file path
// for KindImage, and is empty for KindVideo.
type BufferedMessage struct {
	Kind       MessageKind
	Content    string
	ObservedAt time.Time
}

// Product is one reconstructed listing: a caption plus the media that
// arrived with it inside one quiet window. Images keep arrival order.
type Product struct {
	ID       string
	Caption  string
	Images   []string
	HasVideo bool
}

// InboundMessage is what the transport layer hands to the ingestion
// gate after the sender filter. Body and media are mutually optional.
type InboundMessage struct {
	ID        string
	Sender    string
	Body      string
	HasMedia  bool
	MediaKind MessageKind // KindImage or KindVideo when HasMedia
	Timestamp time.Time
}

// DownloadedMedia is the payload returned by the transport's media
// download capability.
type DownloadedMedia struct {
	Mimetype string
	Data     []byte
}

// ForwardRecord is one ledger row describing a forwarded (or failed)
// product. Write-only reporting data — never read back for control
// decisions.
type ForwardRecord struct {
	ProductID     string
	Caption       string
	NewCaption    string
	OriginalPrice float64
	NewPrice      float64
	Profit        float64
	ImageCount    int
	HasVideo      bool
	Status        string // "forwarded" or "failed"
	CreatedAt     time.Time
}
