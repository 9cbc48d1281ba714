package httpclient

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/repository"
)

// Downloader fetches quiz attachments. It has no timeout of its own; the
// chain context bounds it.
type Downloader struct {
	client *resty.Client
}

var _ repository.Downloader = (*Downloader)(nil)

func NewDownloader(userAgent string, logger *zap.Logger) *Downloader {
	return &Downloader{client: newClient(0, userAgent, logger.With(zap.String("component", "downloader")))}
}

// Download performs a GET and returns the whole body. Non-2xx is an error.
func (d *Downloader) Download(ctx context.Context, url string) (*repository.Download, error) {
	res, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get %s: status %d", url, res.StatusCode())
	}
	return &repository.Download{
		URL:         url,
		ContentType: res.Header().Get("Content-Type"),
		Body:        res.Body(),
	}, nil
}
