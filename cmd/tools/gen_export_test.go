package main

import (
	"bytes"
	"chat-analyzer/parser"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	req.NoError(generate(&out, options{messages: 500, seed: 7, start: start}))

	format, err := parser.FormatByName(parser.DefaultFormat)
	req.NoError(err)
	p, err := parser.New(format, logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)

	export, err := p.Parse(out.String())
	req.NoError(err)
	req.Equal(500, export.Len())
	req.Empty(export.Skipped())
	req.True(export.At(0).IsSystem())
	req.LessOrEqual(len(export.Senders()), len(participants))
}

func TestGenerate_IsDeterministic(t *testing.T) {
	req := require.New(t)
	var first, second bytes.Buffer
	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	req.NoError(generate(&first, options{messages: 50, seed: 1, start: start}))
	req.NoError(generate(&second, options{messages: 50, seed: 1, start: start}))
	req.Equal(first.String(), second.String())
}
