package mimetypes

import (
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	TextPlain MIME = "text/plain"
)

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// IsText reports whether raw sniffs as plain text or one of its descendants (csv, html...).
// The detected type is returned either way.
func IsText(raw []byte) (string, bool) {
	detected := mimetype.Detect(raw)
	for m := detected; m != nil; m = m.Parent() {
		if _, ok := Matches(m.String(), TextPlain); ok {
			return detected.String(), true
		}
	}
	return detected.String(), false
}
