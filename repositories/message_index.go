//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../mocks/mock_message_index.go -package=mocks
package repositories

import (
	"chat-analyzer/domain"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blugelabs/bluge"
)

type IMessageIndex interface {
	Index(export *domain.Export) error
	Search(ctx context.Context, query string, limit int) ([]int, error)
	Close() error
}

// MessageIndex is an in-memory full-text index over one export.
// Documents are keyed by the message position so hits map back to the export.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, err
	}
	return &MessageIndex{writer: writer, log: log}, nil
}

// Index adds every participant message of the export in a single batch.
func (m *MessageIndex) Index(export *domain.Export) error {
	batch := bluge.NewBatch()
	indexed := 0
	for i := 0; i < export.Len(); i++ {
		message := export.At(i)
		if message.IsSystem() {
			continue
		}
		doc := bluge.NewDocument(strconv.Itoa(i)).
			AddField(bluge.NewTextField("body", message.Body)).
			AddField(bluge.NewKeywordField("sender", message.Sender).StoreValue())
		batch.Update(doc.ID(), doc)
		indexed++
	}
	if err := m.writer.Batch(batch); err != nil {
		return err
	}
	m.log.Debug("Messages indexed", "count", indexed)
	return nil
}

// Search returns the positions of the best matching messages, most relevant first.
func (m *MessageIndex) Search(ctx context.Context, query string, limit int) ([]int, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	request := bluge.NewTopNSearch(limit, bluge.NewMatchQuery(query).SetField("body"))
	dmi, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var positions []int
	next, err := dmi.Next()
	for err == nil && next != nil {
		var visitErr error
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field != "_id" {
				return true
			}
			position, convErr := strconv.Atoi(string(value))
			if convErr != nil {
				visitErr = fmt.Errorf("corrupted document id %q: %w", value, convErr)
				return false
			}
			positions = append(positions, position)
			return false
		})
		if err == nil {
			err = visitErr
		}
		if err == nil {
			next, err = dmi.Next()
		}
	}
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (m *MessageIndex) Close() error {
	return m.writer.Close()
}
