package domain

import (
	"chat-analyzer/errors"
)

// Export is the immutable record set produced from one uploaded file.
// Indexes are built once at construction so metrics never rescan for them.
type Export struct {
	messages []Message
	skipped  []errors.MalformedTimestampError

	// Indexes cover participant messages only, system lines are never indexed.
	senders  []string
	bySender map[string][]int
	dates    []string
	byDate   map[string][]int
}

// NewExport takes ownership of messages. Callers must not modify the slice afterwards.
func NewExport(messages []Message, skipped []errors.MalformedTimestampError) *Export {
	e := &Export{
		messages: messages,
		skipped:  skipped,
		bySender: make(map[string][]int),
		byDate:   make(map[string][]int),
	}
	for i, m := range messages {
		if m.IsSystem() {
			continue
		}
		if _, ok := e.bySender[m.Sender]; !ok {
			e.senders = append(e.senders, m.Sender)
		}
		e.bySender[m.Sender] = append(e.bySender[m.Sender], i)

		day := m.Date.Format(DateLayout)
		if _, ok := e.byDate[day]; !ok {
			e.dates = append(e.dates, day)
		}
		e.byDate[day] = append(e.byDate[day], i)
	}
	return e
}

// DateLayout formats calendar days in labels and index keys.
const DateLayout = "2006-01-02"

func (e *Export) Len() int {
	return len(e.messages)
}

// At returns the i-th message in source order.
func (e *Export) At(i int) Message {
	return e.messages[i]
}

// Messages returns a copy of every record, system lines included.
func (e *Export) Messages() []Message {
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Authored returns a copy of the records written by participants.
func (e *Export) Authored() []Message {
	out := make([]Message, 0, len(e.messages))
	for _, m := range e.messages {
		if !m.IsSystem() {
			out = append(out, m)
		}
	}
	return out
}

// MessagesBy returns the messages of one sender in source order.
func (e *Export) MessagesBy(sender string) []Message {
	positions := e.bySender[sender]
	out := make([]Message, len(positions))
	for i, p := range positions {
		out[i] = e.messages[p]
	}
	return out
}

// Senders lists participants in first-seen order. The system sentinel is never included.
func (e *Export) Senders() []string {
	out := make([]string, len(e.senders))
	copy(out, e.senders)
	return out
}

// HasSender reports whether sender wrote at least one message.
func (e *Export) HasSender(sender string) bool {
	_, ok := e.bySender[sender]
	return ok
}

// Dates lists the calendar days (DateLayout) with participant messages, in first-seen order.
func (e *Export) Dates() []string {
	out := make([]string, len(e.dates))
	copy(out, e.dates)
	return out
}

// CountOn returns how many participant messages fall on the given day.
func (e *Export) CountOn(day string) int {
	return len(e.byDate[day])
}

// Skipped returns the lines dropped because their timestamp could not be parsed.
func (e *Export) Skipped() []errors.MalformedTimestampError {
	out := make([]errors.MalformedTimestampError, len(e.skipped))
	copy(out, e.skipped)
	return out
}
