package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// maxLoggedBody caps how much of a response body ends up in logs and errors.
const maxLoggedBody = 512

func newClient(timeout time.Duration, userAgent string, logger *zap.Logger) *resty.Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.Debug("HTTP exchange",
			zap.String("method", res.Request.Method),
			zap.String("url", res.Request.URL),
			zap.Int("status", res.StatusCode()),
			zap.Int("body_bytes", len(res.Body())),
			zap.Duration("duration", res.Time()),
		)
		return nil
	})
	return client
}

func truncate(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}
	return string(body[:maxLoggedBody]) + "..."
}
