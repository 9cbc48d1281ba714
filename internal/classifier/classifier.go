package classifier

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/entity"
)

// FileResolver fetches and decodes the attachment linked from a quiz page.
type FileResolver interface {
	Resolve(ctx context.Context, links []string) (*entity.ResolvedFile, error)
}

// Classifier picks an answer strategy for a question and computes the answer.
type Classifier struct {
	patterns []questionPattern
	logger   *zap.Logger
}

func New(logger *zap.Logger) *Classifier {
	return &Classifier{
		patterns: cascade,
		logger:   logger.With(zap.String("component", "classifier")),
	}
}

// Classify runs the pattern cascade over the extracted content. Each pattern
// is tried at most once. The only side effect is the file download done
// through files by the download pattern.
func (c *Classifier) Classify(ctx context.Context, content *entity.ExtractedContent, files FileResolver) (entity.Answer, Pattern, error) {
	q := &question{
		text:    content.Question,
		lower:   strings.ToLower(content.Question),
		content: content,
		files:   files,
	}

	for _, p := range c.patterns {
		if !p.match(q) {
			continue
		}
		answer, err := p.solve(ctx, q)
		if err != nil {
			c.logger.Warn("matched pattern could not solve question", zap.String("pattern", string(p.name)), zap.Error(err))
			return entity.Answer{}, p.name, err
		}
		c.logger.Debug("question classified",
			zap.String("pattern", string(p.name)),
			zap.String("answer", answer.String()),
			zap.String("answer_kind", answer.Kind().String()),
		)
		return answer, p.name, nil
	}

	// unreachable: the fallback pattern always matches
	return entity.TextAnswer(q.text), PatternFallback, nil
}
