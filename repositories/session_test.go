package repositories

import (
	"chat-analyzer/domain"
	"chat-analyzer/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newSession(filename string) domain.Session {
	return domain.Session{
		ID:         uuid.New(),
		Filename:   filename,
		Format:     "android-12h",
		Size:       2048,
		Messages:   42,
		Skipped:    1,
		UploadedAt: time.Date(2024, time.March, 15, 23, 42, 7, 123456789, time.UTC),
	}
}

func TestSessionRepository_Store_And_Get(t *testing.T) {
	req := require.New(t)
	db, err := OpenInMemory()
	req.NoError(err)
	defer db.Close()

	repository := NewSessionRepository(db, slog.Default())
	session := newSession("chat.txt")
	raw := []byte("1/1/24, 10:00 AM - Alice: hi")

	req.NoError(repository.Store(session, raw))

	fetched, err := repository.GetSession(session.ID)
	req.NoError(err)
	req.Equal(session, fetched)

	fetchedRaw, err := repository.GetRaw(session.ID)
	req.NoError(err)
	req.Equal(raw, fetchedRaw)
}

func TestSessionRepository_Replace(t *testing.T) {
	req := require.New(t)
	db, err := OpenInMemory()
	req.NoError(err)
	defer db.Close()

	repository := NewSessionRepository(db, slog.Default())
	session := newSession("first.txt")
	req.NoError(repository.Store(session, []byte("first")))

	session.Filename = "second.txt"
	session.Messages = 7
	req.NoError(repository.Store(session, []byte("second")))

	fetched, err := repository.GetSession(session.ID)
	req.NoError(err)
	req.Equal("second.txt", fetched.Filename)
	req.Equal(7, fetched.Messages)

	raw, err := repository.GetRaw(session.ID)
	req.NoError(err)
	req.Equal([]byte("second"), raw)

	sessions, err := repository.List()
	req.NoError(err)
	req.Len(sessions, 1)
}

func TestSessionRepository_List_And_Delete(t *testing.T) {
	req := require.New(t)
	db, err := OpenInMemory()
	req.NoError(err)
	defer db.Close()

	repository := NewSessionRepository(db, slog.Default())
	first, second := newSession("a.txt"), newSession("b.txt")
	req.NoError(repository.Store(first, []byte("a")))
	req.NoError(repository.Store(second, []byte("b")))

	sessions, err := repository.List()
	req.NoError(err)
	req.ElementsMatch([]domain.Session{first, second}, sessions)

	req.NoError(repository.Delete(first.ID))

	_, err = repository.GetSession(first.ID)
	req.ErrorIs(err, errors.ErrSessionNotFound)
	_, err = repository.GetRaw(first.ID)
	req.ErrorIs(err, errors.ErrSessionNotFound)

	sessions, err = repository.List()
	req.NoError(err)
	req.Equal([]domain.Session{second}, sessions)
}

func TestSessionRepository_Unknown(t *testing.T) {
	req := require.New(t)
	db, err := OpenInMemory()
	req.NoError(err)
	defer db.Close()

	repository := NewSessionRepository(db, slog.Default())
	_, err = repository.GetSession(uuid.New())
	req.ErrorIs(err, errors.ErrSessionNotFound)

	sessions, err := repository.List()
	req.NoError(err)
	req.Empty(sessions)
}
