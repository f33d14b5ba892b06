package parser

import (
	"chat-analyzer/errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Format describes how an export writes the stamp that opens every message.
// Exports differ by platform, app version and region, so nothing is inferred.
type Format struct {
	Name string
	// Layout is a Go reference-time layout, e.g. "1/2/06, 3:04 PM".
	Layout string `validate:"required"`
	// Open is the literal text before the stamp, "[" on iOS exports.
	Open string
	// Close is the literal text between the stamp and the sender.
	Close    string `validate:"required"`
	Location *time.Location
}

const DefaultFormat = "android-12h"

var presets = map[string]Format{
	"android-12h": {Name: "android-12h", Layout: "1/2/06, 3:04 PM", Close: " - "},
	"android-24h": {Name: "android-24h", Layout: "1/2/06, 15:04", Close: " - "},
	"eu-24h":      {Name: "eu-24h", Layout: "02/01/2006, 15:04", Close: " - "},
	"ios-12h":     {Name: "ios-12h", Layout: "1/2/06, 3:04:05 PM", Open: "[", Close: "] "},
}

// FormatByName returns a preset format.
func FormatByName(name string) (Format, error) {
	f, ok := presets[name]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", errors.ErrUnknownFormat, name)
	}
	return f, nil
}

// WithLayout returns a copy of f using another time layout.
func (f Format) WithLayout(layout string) Format {
	f.Layout = layout
	f.Name = "custom"
	return f
}

// layoutChunks maps Go layout elements to the text they may produce.
// Longer chunks come first so "2006" wins over "2" and "15" over "1".
var layoutChunks = []struct {
	chunk   string
	pattern string
}{
	{"January", `[A-Za-z]+`},
	{"Monday", `[A-Za-z]+`},
	{"2006", `\d{4}`},
	{"Jan", `[A-Za-z]{3}`},
	{"Mon", `[A-Za-z]{3}`},
	{"_2", `[ \d]\d`},
	{"01", `\d{2}`},
	{"02", `\d{2}`},
	{"03", `\d{2}`},
	{"04", `\d{2}`},
	{"05", `\d{2}`},
	{"06", `\d{2}`},
	{"15", `\d{1,2}`},
	{"PM", `[AaPp]\.?[Mm]\.?`},
	{"pm", `[AaPp]\.?[Mm]\.?`},
	{"1", `\d{1,2}`},
	{"2", `\d{1,2}`},
	{"3", `\d{1,2}`},
	{"4", `\d{1,2}`},
	{"5", `\d{1,2}`},
}

// Exports use plain, narrow no-break and no-break spaces interchangeably.
const spaceClass = `[ \x{202F}\x{00A0}]`

var spaceReplacer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

var meridiem = regexp.MustCompile(`(?i)([ap])\.?m\.?`)

// compile turns the format into a line-anchored expression whose first group is the stamp.
func (f Format) compile() (*regexp.Regexp, error) {
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	var stamp strings.Builder
	elements := 0
	for i := 0; i < len(f.Layout); {
		matched := false
		for _, c := range layoutChunks {
			if strings.HasPrefix(f.Layout[i:], c.chunk) {
				stamp.WriteString(c.pattern)
				i += len(c.chunk)
				elements++
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		_, size := utf8.DecodeRuneInString(f.Layout[i:])
		stamp.WriteString(literal(f.Layout[i : i+size]))
		i += size
	}
	if elements == 0 {
		return nil, fmt.Errorf("layout %q has no date or time element", f.Layout)
	}

	expr := `(?m)^` + literal(f.Open) + `(` + stamp.String() + `)` + literal(f.Close)
	return regexp.Compile(expr)
}

func literal(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' {
			b.WriteString(spaceClass)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

// parseStamp converts a matched stamp into a time in the format's location.
func (f Format) parseStamp(stamp string) (time.Time, error) {
	stamp = spaceReplacer.Replace(stamp)
	switch {
	case strings.Contains(f.Layout, "PM"):
		stamp = meridiem.ReplaceAllStringFunc(stamp, func(s string) string {
			return strings.ToUpper(s[:1]) + "M"
		})
	case strings.Contains(f.Layout, "pm"):
		stamp = meridiem.ReplaceAllStringFunc(stamp, func(s string) string {
			return strings.ToLower(s[:1]) + "m"
		})
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(f.Layout, stamp, loc)
}
