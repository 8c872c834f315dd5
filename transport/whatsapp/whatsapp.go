package whatsapp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"whatsapp-reseller/config"
	"whatsapp-reseller/models"
	"whatsapp-reseller/utils"
)

const startURL = "https://web.whatsapp.com/"

// Client drives WhatsApp Web in a headless browser: it watches the
// vendor chat for new messages and sends text/media to the primary
// account. The session lives in a persistent user-data directory, so
// the QR scan is only needed once.
type Client struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
	seen   *utils.SeenSet

	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc

	currentChat string
}

// New creates a Client. Call Start before anything else.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		seen:   utils.NewSeenSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Start launches the browser, loads WhatsApp Web, and blocks until the
// session is authenticated (scanning the QR code on first run).
func (c *Client) Start(ctx context.Context) error {
	chromeBin := findChromeBinary()
	if c.cfg.ChromeBin != "" {
		chromeBin = c.cfg.ChromeBin
	}
	c.logger.Info("[whatsapp] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserDataDir(c.cfg.SessionDir),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	c.cancelAlloc = cancelAlloc

	// Suppress chromedp log noise
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	c.browserCtx = browserCtx
	c.cancelCtx = cancelCtx

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(startURL),
		chromedp.Sleep(5*time.Second),
	); err != nil {
		return fmt.Errorf("whatsapp: load web app: %w", err)
	}

	if err := c.waitForLogin(); err != nil {
		return err
	}

	c.logger.Info("[whatsapp] Authenticated — session ready")
	return c.openChat(c.cfg.VendorNumber)
}

// waitForLogin polls until the chat list renders, prompting for a QR
// scan while the login screen is up.
func (c *Client) waitForLogin() error {
	deadline := time.Now().Add(3 * time.Minute)
	prompted := false

	for time.Now().Before(deadline) {
		var state string
		err := chromedp.Run(c.browserCtx, chromedp.Evaluate(`
			(function() {
				if (document.querySelector('[data-testid="chat-list"]') ||
				    document.querySelector('div[aria-label="Chat list"]') ||
				    document.querySelector('#pane-side')) {
					return 'ready';
				}
				if (document.querySelector('canvas[aria-label*="QR"]') ||
				    document.querySelector('[data-testid="qrcode"]') ||
				    document.querySelector('canvas')) {
					return 'qr';
				}
				return 'loading';
			})()
		`, &state))
		if err != nil {
			return fmt.Errorf("whatsapp: login check: %w", err)
		}

		switch state {
		case "ready":
			return nil
		case "qr":
			if !prompted {
				c.logger.Info("[whatsapp] Scan the QR code with your secondary WhatsApp (session dir: %s)", c.cfg.SessionDir)
				prompted = true
			}
		}

		time.Sleep(2 * time.Second)
	}

	return fmt.Errorf("whatsapp: login timed out after 3 minutes")
}

// openChat brings the conversation for the given number into view.
// No-op when it is already the active chat.
func (c *Client) openChat(number string) error {
	if number == c.currentChat {
		return nil
	}

	phone := strings.TrimSuffix(number, "@c.us")

	err := c.retry.Do("open-chat", func() error {
		ctx, cancel := context.WithTimeout(c.browserCtx, 45*time.Second)
		defer cancel()

		var opened bool
		err := chromedp.Run(ctx,
			// The wa.me deep link resolves any saved or unsaved number
			// to its conversation without touching the search box.
			chromedp.Navigate(startURL+"send?phone="+phone),
			chromedp.Sleep(6*time.Second),
			chromedp.Evaluate(`
				(function() {
					var composer = document.querySelector('[data-testid="conversation-compose-box-input"]') ||
					               document.querySelector('div[contenteditable="true"][data-tab]') ||
					               document.querySelector('footer div[contenteditable="true"]');
					return !!composer;
				})()
			`, &opened),
		)
		if err != nil {
			return fmt.Errorf("navigate to chat: %w", err)
		}
		if !opened {
			return fmt.Errorf("composer not found for %s", phone)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("whatsapp: open chat %s: %w", phone, err)
	}

	c.currentChat = number
	return nil
}

// chatMessage mirrors the fields the extraction script returns per row.
type chatMessage struct {
	ID       string `json:"id"`
	Body     string `json:"body"`
	Incoming bool   `json:"incoming"`
	HasMedia bool   `json:"hasMedia"`
	IsVideo  bool   `json:"isVideo"`
}

// Watch polls the vendor conversation and invokes handler for every
// newly observed incoming message. It blocks until ctx is done.
func (c *Client) Watch(ctx context.Context, handler func(models.InboundMessage)) error {
	c.logger.Info("[whatsapp] Watching %s (poll every %v)", c.cfg.VendorNumber, c.cfg.PollInterval)

	// Messages already on screen predate this session.
	if initial, err := c.readMessages(); err == nil {
		for _, m := range initial {
			c.seen.Add(m.ID)
		}
		c.logger.Info("[whatsapp] Skipping %d pre-existing messages", c.seen.Size())
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := c.openChat(c.cfg.VendorNumber); err != nil {
			c.logger.Warn("[whatsapp] Could not return to vendor chat: %v", err)
			continue
		}

		messages, err := c.readMessages()
		if err != nil {
			c.logger.Warn("[whatsapp] Poll failed: %v", err)
			continue
		}

		for _, m := range messages {
			if !m.Incoming || !c.seen.Add(m.ID) {
				continue
			}

			kind := models.KindImage
			if m.IsVideo {
				kind = models.KindVideo
			}

			handler(models.InboundMessage{
				ID:        m.ID,
				Sender:    c.cfg.VendorNumber,
				Body:      m.Body,
				HasMedia:  m.HasMedia,
				MediaKind: kind,
				Timestamp: time.Now(),
			})
		}
	}
}

// readMessages extracts the visible rows of the active conversation.
func (c *Client) readMessages() ([]chatMessage, error) {
	ctx, cancel := context.WithTimeout(c.browserCtx, 30*time.Second)
	defer cancel()

	var messages []chatMessage
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		(function() {
			var results = [];
			var rows = document.querySelectorAll('div[data-id]');
			for (var i = 0; i < rows.length; i++) {
				var row = rows[i];
				var id = row.getAttribute('data-id');
				if (!id) continue;

				var incoming = id.indexOf('false_') === 0 ||
				               !!row.querySelector('.message-in') ||
				               row.className.indexOf('message-in') >= 0;

				var textEl = row.querySelector('span.selectable-text') ||
				             row.querySelector('[data-testid="conversation-text"]') ||
				             row.querySelector('span[dir="ltr"]');
				var body = textEl ? textEl.innerText : '';

				var img = row.querySelector('img[src^="blob:"]');
				var video = row.querySelector('video, [data-testid="media-play"], span[data-icon="media-play"]');

				results.push({
					id: id,
					body: body,
					incoming: incoming,
					hasMedia: !!(img || video),
					isVideo: !!video
				});
			}
			return results;
		})()
	`, &messages))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read messages: %w", err)
	}

	return messages, nil
}

// DownloadMedia pulls the media blob of a message as raw bytes plus
// its declared mimetype.
func (c *Client) DownloadMedia(ctx context.Context, messageID string) (*models.DownloadedMedia, error) {
	runCtx, cancel := context.WithTimeout(c.browserCtx, 60*time.Second)
	defer cancel()

	type mediaPayload struct {
		DataURL string `json:"dataUrl"`
	}

	var payload mediaPayload
	err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(`
		(function() {
			var row = document.querySelector('div[data-id=%q]');
			if (!row) return { dataUrl: '' };

			var img = row.querySelector('img[src^="blob:"]');
			if (!img) return { dataUrl: '' };

			return fetch(img.src)
				.then(function(res) { return res.blob(); })
				.then(function(blob) {
					return new Promise(function(resolve) {
						var reader = new FileReader();
						reader.onloadend = function() { resolve({ dataUrl: reader.result }); };
						reader.readAsDataURL(blob);
					});
				});
		})()
	`, messageID), &payload, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: media fetch: %w", err)
	}

	mimetype, data, err := decodeDataURL(payload.DataURL)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: media for %s: %w", messageID, err)
	}

	return &models.DownloadedMedia{Mimetype: mimetype, Data: data}, nil
}

// decodeDataURL splits a data: URL into its mimetype and raw bytes.
func decodeDataURL(dataURL string) (string, []byte, error) {
	if dataURL == "" {
		return "", nil, fmt.Errorf("empty media payload")
	}

	const prefix = "data:"
	if !strings.HasPrefix(dataURL, prefix) {
		return "", nil, fmt.Errorf("unexpected payload format")
	}

	rest := dataURL[len(prefix):]
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return "", nil, fmt.Errorf("payload is not base64-encoded")
	}

	mimetype := rest[:semi]
	data, err := base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
	if err != nil {
		return "", nil, fmt.Errorf("decode base64: %w", err)
	}

	return mimetype, data, nil
}

// SendText types a message into the destination chat and submits it.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	if err := c.openChat(to); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(c.browserCtx, 45*time.Second)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Click(`footer div[contenteditable="true"]`, chromedp.ByQuery),
		chromedp.Evaluate(insertTextScript(text), nil),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.KeyEvent("\r"),
		chromedp.Sleep(time.Second),
	)
	if err != nil {
		return fmt.Errorf("whatsapp: send text: %w", err)
	}

	c.logger.Debug("[whatsapp] Sent text to %s (%d chars)", to, len(text))
	return nil
}

// SendMedia attaches a local file to the destination chat, with an
// optional caption, and submits it.
func (c *Client) SendMedia(ctx context.Context, to, path, caption string) error {
	if err := c.openChat(to); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(c.browserCtx, 90*time.Second)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Click(`[data-testid="attach-menu-plus"], span[data-icon="attach-menu-plus"], span[data-icon="clip"]`, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.SetUploadFiles(`input[type="file"][accept*="image"], input[type="file"]`, []string{path}, chromedp.ByQuery),
		chromedp.Sleep(3 * time.Second),
	}

	if caption != "" {
		actions = append(actions,
			chromedp.Click(`div[contenteditable="true"][data-tab]`, chromedp.ByQuery),
			chromedp.Evaluate(insertTextScript(caption), nil),
			chromedp.Sleep(500*time.Millisecond),
		)
	}

	actions = append(actions,
		chromedp.KeyEvent("\r"),
		chromedp.Sleep(2*time.Second),
	)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return fmt.Errorf("whatsapp: send media %s: %w", path, err)
	}

	c.logger.Debug("[whatsapp] Sent media %s to %s", path, to)
	return nil
}

// SendTyping focuses the composer so the recipient sees the typing
// indicator. Best effort.
func (c *Client) SendTyping(ctx context.Context, to string) error {
	if err := c.openChat(to); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(c.browserCtx, 15*time.Second)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Click(`footer div[contenteditable="true"]`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("whatsapp: typing indicator: %w", err)
	}
	return nil
}

// Close tears down the browser.
func (c *Client) Close() {
	if c.cancelCtx != nil {
		c.cancelCtx()
	}
	if c.cancelAlloc != nil {
		c.cancelAlloc()
	}
}

// insertTextScript inserts text into the focused composer through the
// editing command API, which fires the input events WhatsApp listens
// for (plain DOM writes are ignored).
func insertTextScript(text string) string {
	return fmt.Sprintf(`document.execCommand('insertText', false, %q)`, text)
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
