// Package parser turns raw chat export text into an ordered, immutable record set.
package parser

import (
	"chat-analyzer/domain"
	"chat-analyzer/errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Parser is bound to one export Format. It holds no state between calls.
type Parser struct {
	format  Format
	pattern *regexp.Regexp
	log     *slog.Logger
}

// New compiles the format's stamp pattern once.
func New(format Format, log *slog.Logger) (*Parser, error) {
	pattern, err := format.compile()
	if err != nil {
		return nil, err
	}
	return &Parser{format: format, pattern: pattern, log: log}, nil
}

// Format returns the format the parser was built with.
func (p *Parser) Format() Format {
	return p.format
}

// Parse reads a whole export. Text before the first stamp is discarded and every
// stamp opens a message that runs until the next stamp, so multi-line bodies stay
// attached to their sender. A stamp that cannot be parsed drops its message only.
func (p *Parser) Parse(raw string) (*domain.Export, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	matches := p.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, &errors.ParseError{
			Reason: errors.ErrUnrecognizedFormat.Error(),
			Lines:  countLines(text),
		}
	}

	messages := make([]domain.Message, 0, len(matches))
	var skipped []errors.MalformedTimestampError
	outOfOrder := 0
	line, cursor := 1, 0

	for i, m := range matches {
		line += strings.Count(text[cursor:m[0]], "\n")
		cursor = m[0]

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		stamp := text[m[2]:m[3]]
		chunk := strings.TrimRight(text[m[1]:end], "\n")

		at, err := p.format.parseStamp(stamp)
		if err != nil {
			skipped = append(skipped, errors.MalformedTimestampError{Line: line, Stamp: stamp, Err: err})
			p.log.Warn("Skipping line with malformed timestamp", "line", line, "stamp", stamp, "error", err)
			continue
		}

		if n := len(messages); n > 0 && at.Before(messages[n-1].Timestamp) {
			outOfOrder++
		}
		sender, body := splitSender(chunk)
		messages = append(messages, domain.NewMessage(at, sender, body))
	}

	if len(messages) == 0 {
		return nil, &errors.ParseError{
			Reason: fmt.Sprintf("%s: all %d timestamps are malformed", errors.ErrUnrecognizedFormat, len(skipped)),
			Lines:  countLines(text),
		}
	}
	if outOfOrder > 0 {
		p.log.Warn("Export contains out-of-order timestamps, keeping source order", "count", outOfOrder)
	}

	p.log.Debug("Export parsed",
		"format", p.format.Name,
		"messages", len(messages),
		"skipped", len(skipped))
	return domain.NewExport(messages, skipped), nil
}

// splitSender cuts "Sender: body" on the first ": " of the first line.
// Lines without one are system notifications and keep the whole chunk as body.
func splitSender(chunk string) (string, string) {
	firstLine := chunk
	if nl := strings.IndexByte(chunk, '\n'); nl >= 0 {
		firstLine = chunk[:nl]
	}
	idx := strings.Index(firstLine, ": ")
	if idx <= 0 {
		return domain.GroupNotification, chunk
	}
	return chunk[:idx], chunk[idx+2:]
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(text, "\n"), "\n") + 1
}
