package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/quiz-solver/internal/entity"
)

// Pattern names a question shape the classifier knows how to answer.
type Pattern string

const (
	PatternDownloadSum    Pattern = "download_sum"
	PatternTableAggregate Pattern = "table_aggregate"
	PatternTrueFalse      Pattern = "true_false"
	PatternLastNumber     Pattern = "last_number"
	PatternFallback       Pattern = "fallback"
)

var numberPattern = regexp.MustCompile(`\d+\.\d+|\d+`)

const trueOrFalse = "true or false"

// question is what every pattern gets to look at.
type question struct {
	text    string
	lower   string
	content *entity.ExtractedContent
	files   FileResolver
}

func (q *question) mentions(words ...string) bool {
	for _, w := range words {
		if !strings.Contains(q.lower, w) {
			return false
		}
	}
	return true
}

// questionPattern pairs a structural predicate with its solver. A pattern
// whose predicate holds owns the question: a solver error is final.
type questionPattern struct {
	name  Pattern
	match func(q *question) bool
	solve func(ctx context.Context, q *question) (entity.Answer, error)
}

// cascade is evaluated top to bottom; the first match wins.
var cascade = []questionPattern{
	{
		name:  PatternDownloadSum,
		match: func(q *question) bool { return q.mentions("download", "sum") },
		solve: solveDownloadSum,
	},
	{
		name:  PatternTableAggregate,
		match: func(q *question) bool { return len(q.content.Tables) > 0 },
		solve: solveTableAggregate,
	},
	{
		name:  PatternTrueFalse,
		match: func(q *question) bool { return q.mentions(trueOrFalse) },
		solve: solveTrueFalse,
	},
	{
		name:  PatternLastNumber,
		match: func(q *question) bool { return numberPattern.MatchString(q.text) },
		solve: solveLastNumber,
	},
	{
		name:  PatternFallback,
		match: func(*question) bool { return true },
		solve: func(_ context.Context, q *question) (entity.Answer, error) {
			return entity.TextAnswer(q.text), nil
		},
	},
}

func solveDownloadSum(ctx context.Context, q *question) (entity.Answer, error) {
	if q.files == nil {
		return entity.Answer{}, fmt.Errorf("%w: no file resolver available", entity.ErrUnsolvableQuestion)
	}
	file, err := q.files.Resolve(ctx, q.content.Links)
	if err != nil {
		return entity.Answer{}, fmt.Errorf("%w: %w", entity.ErrUnsolvableQuestion, err)
	}

	if file.Table != nil {
		col, ok := file.Table.Normalize().FirstNumericColumn()
		if !ok {
			return entity.Answer{}, fmt.Errorf("%w: %s has no numeric column", entity.ErrUnsolvableQuestion, file.SourceURL)
		}
		return entity.FloatAnswer(col.Sum()), nil
	}

	// PDF text has no columns; every number in it is summed.
	literals := numberPattern.FindAllString(file.Text, -1)
	if len(literals) == 0 {
		return entity.Answer{}, fmt.Errorf("%w: %s contains no numbers", entity.ErrUnsolvableQuestion, file.SourceURL)
	}
	var total float64
	for _, lit := range literals {
		v, _ := entity.ParseNumber(lit)
		total += v
	}
	return entity.FloatAnswer(total), nil
}

func solveTableAggregate(_ context.Context, q *question) (entity.Answer, error) {
	frame := q.content.Tables[0].Normalize()

	if col, ok := frame.FirstNumericColumn(); ok {
		switch {
		case q.mentions("sum"):
			return entity.FloatAnswer(col.Sum()), nil
		case q.mentions("average"):
			return entity.FloatAnswer(col.Mean()), nil
		case q.mentions("max"):
			return entity.FloatAnswer(col.Max()), nil
		case q.mentions("min"):
			return entity.FloatAnswer(col.Min()), nil
		}
	}
	return entity.IntegerAnswer(int64(frame.RowCount())), nil
}

// solveTrueFalse answers true when "true" appears outside the "true or false"
// prompt itself. It does not judge the statement. Searching the raw text
// would answer true to every such question, because the prompt contains
// "true"; a question without a stray "true" must come out false.
func solveTrueFalse(_ context.Context, q *question) (entity.Answer, error) {
	rest := strings.ReplaceAll(q.lower, trueOrFalse, " ")
	return entity.BoolAnswer(strings.Contains(rest, "true")), nil
}

// solveLastNumber returns the last numeric literal as an integer. Decimals
// are cut at the point ("3.9" gives 3), never rounded.
func solveLastNumber(_ context.Context, q *question) (entity.Answer, error) {
	literals := numberPattern.FindAllString(q.text, -1)
	last := literals[len(literals)-1]
	whole, _, _ := strings.Cut(last, ".")
	v, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return entity.Answer{}, fmt.Errorf("%w: %s is out of range", entity.ErrUnsolvableQuestion, last)
	}
	return entity.IntegerAnswer(v), nil
}
