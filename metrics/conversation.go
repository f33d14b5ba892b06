package metrics

import (
	"chat-analyzer/domain"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

type BusyUser struct {
	Name    string
	Count   int
	Percent float64
}

type LengthPoint struct {
	Date string
	Mean float64
}

// MostBusyUsers ranks senders by message count. Only the overall view has a ranking, a user filter returns nil.
func (e *Engine) MostBusyUsers(user string, export *domain.Export) []BusyUser {
	return e.mostBusyUsers(selectView(user, export))
}

func (e *Engine) mostBusyUsers(v view) []BusyUser {
	if !v.overall() || v.export == nil || len(v.authored) == 0 {
		return nil
	}
	c := newCounter()
	for _, sender := range v.export.Senders() {
		c.counts[sender] = len(v.export.MessagesBy(sender))
		c.order = append(c.order, sender)
	}
	total := len(v.authored)
	return lo.Map(c.ranked(e.opts.TopUsers), func(r Count, _ int) BusyUser {
		return BusyUser{Name: r.Key, Count: r.Count, Percent: sharePercent(r.Count, total)}
	})
}

// sharePercent truncates count/total to hundredths of a percent so that shares never sum above 100.
func sharePercent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count*10000/total) / 100
}

// SentimentAnalysis scores every non-empty text message of the view, in source order.
func (e *Engine) SentimentAnalysis(user string, export *domain.Export) []float64 {
	return e.sentiment(selectView(user, export))
}

func (e *Engine) sentiment(v view) []float64 {
	scores := make([]float64, 0, len(v.authored))
	for _, m := range e.textual(v) {
		if strings.TrimSpace(m.Body) == "" {
			continue
		}
		scores = append(scores, e.scorer.Score(m.Body))
	}
	return scores
}

// ResponseTimeAnalysis returns, in seconds, how long each message of the view came after the
// latest earlier message written by someone else. The first message of the view and messages
// nobody else preceded are skipped.
func (e *Engine) ResponseTimeAnalysis(user string, export *domain.Export) []float64 {
	return e.responseTimes(selectView(user, export))
}

func (e *Engine) responseTimes(v view) []float64 {
	if v.export == nil {
		return nil
	}
	var (
		out        []float64
		seen       bool
		lastSender string
		lastAt     time.Time
		otherAt    time.Time
		hasOther   bool
		hasLast    bool
	)
	for _, m := range v.export.Authored() {
		var ref time.Time
		var ok bool
		switch {
		case hasLast && m.Sender != lastSender:
			ref, ok = lastAt, true
		case hasOther:
			ref, ok = otherAt, true
		}

		if v.overall() || m.Sender == v.user {
			if seen && ok {
				out = append(out, math.Max(0, m.Timestamp.Sub(ref).Seconds()))
			}
			seen = true
		}

		if hasLast && m.Sender != lastSender {
			otherAt, hasOther = lastAt, true
		}
		lastSender, lastAt, hasLast = m.Sender, m.Timestamp, true
	}
	return out
}

// MessageLengthTimeline is the mean body length in runes per calendar day.
func (e *Engine) MessageLengthTimeline(user string, export *domain.Export) []LengthPoint {
	return e.lengthTimeline(selectView(user, export))
}

func (e *Engine) lengthTimeline(v view) []LengthPoint {
	lengths := make(map[string][]float64)
	for _, m := range e.textual(v) {
		day := m.Date.Format(domain.DateLayout)
		lengths[day] = append(lengths[day], float64(utf8.RuneCountInString(m.Body)))
	}
	days := lo.Keys(lengths)
	sort.Strings(days)
	return lo.Map(days, func(day string, _ int) LengthPoint {
		return LengthPoint{Date: day, Mean: round2(lo.Mean(lengths[day]))}
	})
}

// UserOptions lists the selectable views: Overall first, then senders sorted by name.
func UserOptions(export *domain.Export) []string {
	if export == nil {
		return []string{Overall}
	}
	senders := export.Senders()
	sort.Strings(senders)
	return append([]string{Overall}, senders...)
}

// Mean of xs, 0 when empty.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return lo.Mean(xs)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
