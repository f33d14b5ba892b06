// Package classifier holds the text helpers shared by every metric:
// media placeholders, links, emoji and stop-word filtered tokens.
package classifier

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"mvdan.cc/xurls/v2"
)

var validate = validator.New()

type MediaType string

const (
	Media    MediaType = "media"
	Image    MediaType = "image"
	Video    MediaType = "video"
	Audio    MediaType = "audio"
	Document MediaType = "document"
	Sticker  MediaType = "sticker"
	GIF      MediaType = "gif"
)

// MediaOmitted is the Android placeholder for any attachment left out of the export.
const MediaOmitted = "<Media omitted>"

// DefaultPlaceholders maps the placeholder lines known from exports to a media type.
// Exports that write a single generic placeholder end up in the Media bucket.
func DefaultPlaceholders() map[string]MediaType {
	return map[string]MediaType{
		MediaOmitted:       Media,
		"image omitted":    Image,
		"video omitted":    Video,
		"audio omitted":    Audio,
		"document omitted": Document,
		"sticker omitted":  Sticker,
		"GIF omitted":      GIF,
	}
}

type Options struct {
	Placeholders map[string]MediaType `validate:"required,min=1"`
	StopWords    []string
}

// Classifier is read-only after construction and safe for concurrent use.
type Classifier struct {
	placeholders map[string]MediaType
	lowered      []string
	stopWords    map[string]struct{}
}

var urlPattern = xurls.Strict()

func New(opts Options) (*Classifier, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid classifier options: %w", err)
	}
	stopWords := make(map[string]struct{}, len(opts.StopWords))
	for _, w := range opts.StopWords {
		stopWords[strings.ToLower(w)] = struct{}{}
	}
	return &Classifier{
		placeholders: opts.Placeholders,
		lowered: lo.Map(lo.Keys(opts.Placeholders), func(p string, _ int) string {
			return strings.ToLower(p)
		}),
		stopWords: stopWords,
	}, nil
}

// NewDefault builds a classifier with the default placeholders, the embedded
// stop-word lists and any extra stop words.
func NewDefault(extraStopWords ...string) (*Classifier, error) {
	list, err := DefaultStopWords()
	if err != nil {
		return nil, err
	}
	return New(Options{
		Placeholders: DefaultPlaceholders(),
		StopWords:    append(list.Words, extraStopWords...),
	})
}

// IsMedia reports whether the whole body is a media placeholder.
func (c *Classifier) IsMedia(body string) bool {
	_, ok := c.placeholders[strings.TrimSpace(body)]
	return ok
}

// MediaType returns the type of a media message. ok is false for ordinary text.
func (c *Classifier) MediaType(body string) (MediaType, bool) {
	t, ok := c.placeholders[strings.TrimSpace(body)]
	return t, ok
}

// ExtractURLs returns every scheme-qualified link in body, in order.
func (c *Classifier) ExtractURLs(body string) []string {
	return urlPattern.FindAllString(body, -1)
}

// IsStopWord expects a lowercase token.
func (c *Classifier) IsStopWord(token string) bool {
	_, ok := c.stopWords[token]
	return ok
}

// TokenizeWords lowercases body, splits it on whitespace and drops stop words
// and media placeholders. Only word frequency uses it; sentiment reads raw text.
func (c *Classifier) TokenizeWords(body string) []string {
	if c.IsMedia(body) {
		return nil
	}
	lower := strings.ToLower(body)
	for _, p := range c.lowered {
		lower = strings.ReplaceAll(lower, p, " ")
	}
	return lo.Filter(strings.Fields(lower), func(token string, _ int) bool {
		return !c.IsStopWord(token)
	})
}
