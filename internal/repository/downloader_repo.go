package repository

import "context"

// Download is the raw result of fetching an attachment.
type Download struct {
	URL         string
	ContentType string
	Body        []byte
}

// Downloader fetches quiz attachments.
type Downloader interface {
	Download(ctx context.Context, url string) (*Download, error)
}
