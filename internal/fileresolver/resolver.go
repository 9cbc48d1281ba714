package fileresolver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/internal/repository"
)

// decoder turns a download into a ResolvedFile or reports that the payload is
// not in its format.
type decoder struct {
	format entity.FileFormat
	decode func(dl *repository.Download) (*entity.ResolvedFile, error)
}

// Resolver downloads the first link of a quiz page and decodes it, trying CSV,
// then spreadsheet, then PDF.
type Resolver struct {
	downloader repository.Downloader
	decoders   []decoder
	logger     *zap.Logger
}

func NewResolver(downloader repository.Downloader, logger *zap.Logger) *Resolver {
	return &Resolver{
		downloader: downloader,
		decoders: []decoder{
			{format: entity.FormatCSV, decode: decodeCSV},
			{format: entity.FormatSpreadsheet, decode: decodeSpreadsheet},
			{format: entity.FormatPDF, decode: decodePDF},
		},
		logger: logger.With(zap.String("component", "file_resolver")),
	}
}

// Resolve fetches links[0]. A format that fails to decode silently hands over
// to the next one; running out of formats is an error.
func (r *Resolver) Resolve(ctx context.Context, links []string) (*entity.ResolvedFile, error) {
	if len(links) == 0 {
		return nil, entity.ErrMissingDownloadLink
	}

	dl, err := r.downloader.Download(ctx, links[0])
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", links[0], err)
	}

	for _, d := range r.decoders {
		file, err := d.safeDecode(dl)
		if err != nil {
			r.logger.Debug("file is not in format", zap.String("url", dl.URL), zap.String("format", string(d.format)), zap.Error(err))
			continue
		}
		file.SourceURL = dl.URL
		file.Content = dl.Body
		file.Format = d.format
		r.logger.Info("resolved file", zap.String("url", dl.URL), zap.String("format", string(d.format)), zap.Int("bytes", len(dl.Body)))
		return file, nil
	}

	return nil, fmt.Errorf("%w: %s (%d bytes)", entity.ErrUnprocessableFile, dl.URL, len(dl.Body))
}

// safeDecode turns a parser panic on malformed input into an ordinary
// decode failure.
func (d decoder) safeDecode(dl *repository.Download) (file *entity.ResolvedFile, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			file, err = nil, fmt.Errorf("%s decoder panicked: %v", d.format, rec)
		}
	}()
	return d.decode(dl)
}
