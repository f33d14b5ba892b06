// Package metrics computes descriptive statistics over a parsed export.
// Every metric reads an (user, export) pair and returns plain values; nothing is cached or logged.
package metrics

import (
	"chat-analyzer/classifier"
	"chat-analyzer/domain"
	"chat-analyzer/sentiment"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Overall selects every participant instead of a single sender.
const Overall = "Overall"

const DefaultTopWords = 20

var validate = validator.New()

type Options struct {
	TopWords int `validate:"min=0"`
	// TopUsers caps the busy users ranking, 0 keeps everyone.
	TopUsers int `validate:"min=0"`
}

type Engine struct {
	classifier *classifier.Classifier
	scorer     sentiment.Scorer
	opts       Options
}

func New(c *classifier.Classifier, scorer sentiment.Scorer, opts Options) (*Engine, error) {
	if c == nil || scorer == nil {
		return nil, fmt.Errorf("metrics engine needs a classifier and a scorer")
	}
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid metrics options: %w", err)
	}
	if opts.TopWords == 0 {
		opts.TopWords = DefaultTopWords
	}
	return &Engine{classifier: c, scorer: scorer, opts: opts}, nil
}

// view holds the records a metric reads for one user filter.
type view struct {
	user string
	// records keeps system lines in the overall view, they only feed message, media and link counts.
	records  []domain.Message
	authored []domain.Message
	export   *domain.Export
}

func (v view) overall() bool {
	return v.user == Overall
}

func selectView(user string, export *domain.Export) view {
	v := view{user: user, export: export}
	if export == nil {
		return v
	}
	if user == Overall {
		v.records = export.Messages()
		v.authored = export.Authored()
		return v
	}
	mine := export.MessagesBy(user)
	v.records = mine
	v.authored = mine
	return v
}

// textual returns the authored messages that carry words, media placeholders excluded.
func (e *Engine) textual(v view) []domain.Message {
	out := make([]domain.Message, 0, len(v.authored))
	for _, m := range v.authored {
		if !e.classifier.IsMedia(m.Body) {
			out = append(out, m)
		}
	}
	return out
}
