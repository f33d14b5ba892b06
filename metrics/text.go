package metrics

import (
	"chat-analyzer/domain"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

type Stats struct {
	Messages int
	Words    int
	Media    int
	Links    int
}

// FetchStats counts messages, words, media and links. System lines count as messages in the overall view.
func (e *Engine) FetchStats(user string, export *domain.Export) Stats {
	return e.fetchStats(selectView(user, export))
}

func (e *Engine) fetchStats(v view) Stats {
	stats := Stats{Messages: len(v.records)}
	for _, m := range v.records {
		if e.classifier.IsMedia(m.Body) {
			stats.Media++
		}
		stats.Links += len(e.classifier.ExtractURLs(m.Body))
	}
	for _, m := range e.textual(v) {
		stats.Words += len(e.classifier.TokenizeWords(m.Body))
	}
	return stats
}

func (e *Engine) WordCloud(user string, export *domain.Export) map[string]int {
	return e.wordCloud(selectView(user, export))
}

func (e *Engine) wordCloud(v view) map[string]int {
	return e.words(v).counts
}

func (e *Engine) MostCommonWords(user string, export *domain.Export) []Count {
	return e.mostCommonWords(selectView(user, export))
}

func (e *Engine) mostCommonWords(v view) []Count {
	return e.words(v).ranked(e.opts.TopWords)
}

func (e *Engine) words(v view) *counter {
	c := newCounter()
	for _, m := range e.textual(v) {
		c.add(e.classifier.TokenizeWords(m.Body)...)
	}
	return c
}

func (e *Engine) EmojiHelper(user string, export *domain.Export) []Count {
	return e.emojiHelper(selectView(user, export))
}

func (e *Engine) emojiHelper(v view) []Count {
	c := newCounter()
	for _, m := range v.authored {
		c.add(e.classifier.ExtractEmoji(m.Body)...)
	}
	return c.ranked(0)
}

func (e *Engine) MediaTypesSharedAnalysis(user string, export *domain.Export) []Count {
	return e.mediaTypes(selectView(user, export))
}

func (e *Engine) mediaTypes(v view) []Count {
	c := newCounter()
	for _, m := range v.records {
		if t, ok := e.classifier.MediaType(m.Body); ok {
			c.add(string(t))
		}
	}
	return c.ranked(0)
}

// LanguageDistribution counts messages per ISO 639-1 language, unreliable detections are left out.
func (e *Engine) LanguageDistribution(user string, export *domain.Export) []Count {
	return e.languages(selectView(user, export))
}

func (e *Engine) languages(v view) []Count {
	c := newCounter()
	bodies := lo.Filter(e.textual(v), func(m domain.Message, _ int) bool {
		return strings.TrimSpace(m.Body) != ""
	})
	for _, m := range bodies {
		info := whatlanggo.Detect(m.Body)
		if !info.IsReliable() {
			continue
		}
		if code := info.Lang.Iso6391(); code != "" {
			c.add(code)
		}
	}
	return c.ranked(0)
}
