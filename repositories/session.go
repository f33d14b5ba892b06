//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"chat-analyzer/domain"
	"chat-analyzer/errors"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type ISessionRepository interface {
	Store(session domain.Session, raw []byte) error
	GetSession(id uuid.UUID) (domain.Session, error)
	GetRaw(id uuid.UUID) ([]byte, error)
	List() ([]domain.Session, error)
	Delete(id uuid.UUID) error
}

type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

// OpenInMemory opens a badger instance that never touches the disk.
func OpenInMemory() (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
}

// Keys are "session:{uuid}:meta" and "session:{uuid}:raw" so a session is dropped with one prefix.
func sessionPrefix(id uuid.UUID) string {
	return fmt.Sprintf("session:%s:", id)
}

func metaKey(id uuid.UUID) []byte {
	return []byte(sessionPrefix(id) + "meta")
}

func rawKey(id uuid.UUID) []byte {
	return []byte(sessionPrefix(id) + "raw")
}

// Store writes metadata and raw upload in one transaction, replacing any previous upload of the session.
func (s SessionRepository) Store(session domain.Session, raw []byte) error {
	bytes, err := marshalSession(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(metaKey(session.ID), bytes); err != nil {
			return err
		}
		return txn.Set(rawKey(session.ID), raw)
	})
}

func (s SessionRepository) GetSession(id uuid.UUID) (domain.Session, error) {
	value, err := s.get(metaKey(id))
	if err != nil {
		return domain.Session{}, err
	}
	return unmarshalSession(value)
}

func (s SessionRepository) GetRaw(id uuid.UUID) ([]byte, error) {
	return s.get(rawKey(id))
}

func (s SessionRepository) get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", errors.ErrSessionNotFound, key)
	}
	return value, err
}

// List returns every stored session in key order.
func (s SessionRepository) List() ([]domain.Session, error) {
	var sessions []domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte("session:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if !strings.HasSuffix(string(item.Key()), ":meta") {
				continue
			}
			err := item.Value(func(value []byte) error {
				session, err := unmarshalSession(value)
				if err != nil {
					return err
				}
				sessions = append(sessions, session)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return sessions, err
}

func (s SessionRepository) Delete(id uuid.UUID) error {
	if err := s.db.DropPrefix([]byte(sessionPrefix(id))); err != nil {
		return err
	}
	s.log.Debug("Session dropped", "session", id)
	return nil
}

func marshalSession(session domain.Session) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"id":          session.ID.String(),
		"filename":    session.Filename,
		"format":      session.Format,
		"size":        session.Size,
		"messages":    session.Messages,
		"skipped":     session.Skipped,
		"uploaded_at": session.UploadedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func unmarshalSession(value []byte) (domain.Session, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(value, &st); err != nil {
		return domain.Session{}, err
	}
	fields := st.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return domain.Session{}, err
	}
	uploadedAt, err := time.Parse(time.RFC3339Nano, fields["uploaded_at"].GetStringValue())
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		ID:         id,
		Filename:   fields["filename"].GetStringValue(),
		Format:     fields["format"].GetStringValue(),
		Size:       int(fields["size"].GetNumberValue()),
		Messages:   int(fields["messages"].GetNumberValue()),
		Skipped:    int(fields["skipped"].GetNumberValue()),
		UploadedAt: uploadedAt,
	}, nil
}
