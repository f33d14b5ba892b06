package services

import (
	"chat-analyzer/classifier"
	"chat-analyzer/domain"
	"chat-analyzer/errors"
	"chat-analyzer/metrics"
	"chat-analyzer/mocks"
	"chat-analyzer/observability"
	"chat-analyzer/parser"
	"chat-analyzer/repositories"
	"chat-analyzer/sentiment"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const chatExport = `1/1/24, 10:00 AM - Alice: Hi
1/1/24, 10:05 AM - Bob: Hello, pizza tonight?
1/1/24, 10:06 AM - Bob: <Media omitted>
1/1/24, 10:07 AM - Alice left
`

type fixture struct {
	service    *AnalyzerService
	repository *mocks.MockISessionRepository
	monitoring *observability.MonitoringManager
}

func newFixture(t *testing.T, maxUploadBytes int) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	format, err := parser.FormatByName(parser.DefaultFormat)
	require.NoError(t, err)
	p, err := parser.New(format, log)
	require.NoError(t, err)
	c, err := classifier.NewDefault()
	require.NoError(t, err)
	scorer, err := sentiment.NewDefaultScorer()
	require.NoError(t, err)
	engine, err := metrics.New(c, scorer, metrics.Options{})
	require.NoError(t, err)

	repository := mocks.NewMockISessionRepository(ctrl)
	monitoring := observability.NewMonitoringManager(log)
	newIndex := func() (repositories.IMessageIndex, error) {
		return repositories.NewMessageIndex(log)
	}
	service := NewAnalyzerService(log, p, engine, repository, newIndex, monitoring, maxUploadBytes)
	return fixture{service: service, repository: repository, monitoring: monitoring}
}

func TestAnalyzerService_Upload(t *testing.T) {
	t.Run("should open a new session and analyze it", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, 0)
		f.repository.EXPECT().Store(gomock.Any(), []byte(chatExport)).Return(nil).Times(1)

		session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
		req.NoError(err)
		req.NotEqual(uuid.Nil, session.ID)
		req.Equal("chat.txt", session.Filename)
		req.Equal(parser.DefaultFormat, session.Format)
		req.Equal(4, session.Messages)
		req.Equal(len(chatExport), session.Size)

		users, err := f.service.Users(session.ID)
		req.NoError(err)
		req.Equal([]string{metrics.Overall, "Alice", "Bob"}, users)

		report, err := f.service.Analyze(context.Background(), session.ID, metrics.Overall)
		req.NoError(err)
		req.Equal(4, report.Stats.Messages)
		req.Equal(1, report.Stats.Media)
		req.Equal([]float64{300, 360}, report.ResponseTimes)

		stats := f.monitoring.GetLatest()
		req.Equal(uint64(1), stats.Uploads)
		req.Equal(uint64(1), stats.Analyses)
		req.Equal(1, stats.ActiveSessions)
	})

	t.Run("should reject invalid uploads", func(t *testing.T) {
		tests := []struct {
			name string
			raw  []byte
			want error
		}{
			{name: "empty", raw: nil, want: errors.ErrEmptyUpload},
			{name: "too large", raw: []byte(chatExport + chatExport), want: errors.ErrUploadTooLarge},
			{name: "binary", raw: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), want: errors.ErrUnsupportedUpload},
			{name: "not an export", raw: []byte("just some notes\nnothing else\n"), want: errors.ErrUnrecognizedFormat},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := require.New(t)
				f := newFixture(t, len(chatExport))
				f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Times(0)

				_, err := f.service.Upload(context.Background(), uuid.Nil, "upload.bin", tt.raw)
				req.ErrorIs(err, tt.want)
				req.Equal(uint64(1), f.monitoring.GetLatest().FailedUploads)
			})
		}
	})

	t.Run("should keep the previous dataset when a new upload fails", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, 0)
		f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
		req.NoError(err)

		_, err = f.service.Upload(context.Background(), session.ID, "notes.txt", []byte("not a chat"))
		req.ErrorIs(err, errors.ErrUnrecognizedFormat)

		users, err := f.service.Users(session.ID)
		req.NoError(err)
		req.Equal([]string{metrics.Overall, "Alice", "Bob"}, users)
	})

	t.Run("should replace the dataset of a known session", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, 0)
		f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
		req.NoError(err)

		replaced, err := f.service.Upload(context.Background(), session.ID, "other.txt",
			[]byte("2/1/24, 9:00 AM - Carol: Morning\n"))
		req.NoError(err)
		req.Equal(session.ID, replaced.ID)

		users, err := f.service.Users(session.ID)
		req.NoError(err)
		req.Equal([]string{metrics.Overall, "Carol"}, users)

		hits, err := f.service.Search(context.Background(), session.ID, "pizza", 10)
		req.NoError(err)
		req.Empty(hits)
	})

	t.Run("should fail on an unknown session", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, 0)

		_, err := f.service.Upload(context.Background(), uuid.New(), "chat.txt", []byte(chatExport))
		req.ErrorIs(err, errors.ErrSessionNotFound)
	})

	t.Run("should surface storage errors", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, 0)
		f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(fmt.Errorf("disk full")).Times(1)

		_, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
		req.ErrorContains(err, "disk full")
	})
}

func TestAnalyzerService_Analyze(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 0)
	f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
	req.NoError(err)

	report, err := f.service.Analyze(context.Background(), session.ID, "Bob")
	req.NoError(err)
	req.False(report.Empty)
	req.Equal(metrics.Stats{Messages: 2, Words: 3, Media: 1}, report.Stats)
	req.Nil(report.BusyUsers)

	report, err = f.service.Analyze(context.Background(), session.ID, "Mallory")
	req.NoError(err)
	req.True(report.Empty)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.service.Analyze(ctx, session.ID, metrics.Overall)
	req.ErrorIs(err, context.Canceled)

	_, err = f.service.Analyze(context.Background(), uuid.Nil, metrics.Overall)
	req.ErrorIs(err, errors.ErrNoDataset)
	_, err = f.service.Analyze(context.Background(), uuid.New(), metrics.Overall)
	req.ErrorIs(err, errors.ErrSessionNotFound)
}

func TestAnalyzerService_Search(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 0)
	f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
	req.NoError(err)

	hits, err := f.service.Search(context.Background(), session.ID, "pizza", 5)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("Bob", hits[0].Sender)
	req.Equal("Hello, pizza tonight?", hits[0].Body)
}

func TestAnalyzerService_SearchIndexFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newFixture(t, 0)
	index := mocks.NewMockIMessageIndex(ctrl)
	f.service.newIndex = func() (repositories.IMessageIndex, error) { return index, nil }

	index.EXPECT().Index(gomock.Any()).Return(nil).Times(1)
	index.EXPECT().Search(gomock.Any(), "pizza", 5).Return(nil, fmt.Errorf("index closed")).Times(1)
	f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
	req.NoError(err)

	_, err = f.service.Search(context.Background(), session.ID, "pizza", 5)
	req.ErrorContains(err, "index closed")
}

func TestAnalyzerService_SearchDuringReplacement(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newFixture(t, 0)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	old := mocks.NewMockIMessageIndex(ctrl)
	indexes := []func() (repositories.IMessageIndex, error){
		func() (repositories.IMessageIndex, error) { return old, nil },
		func() (repositories.IMessageIndex, error) { return repositories.NewMessageIndex(log) },
	}
	f.service.newIndex = func() (repositories.IMessageIndex, error) {
		next := indexes[0]
		indexes = indexes[1:]
		return next()
	}

	var (
		mu     sync.Mutex
		events []string
	)
	record := func(event string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	}
	searching := make(chan struct{})
	release := make(chan struct{})
	replacing := make(chan struct{})

	old.EXPECT().Index(gomock.Any()).Return(nil).Times(1)
	old.EXPECT().Search(gomock.Any(), "pizza", 5).DoAndReturn(func(context.Context, string, int) ([]int, error) {
		close(searching)
		<-release
		record("search")
		return []int{1}, nil
	}).Times(1)
	old.EXPECT().Close().DoAndReturn(func() error {
		record("close")
		return nil
	}).Times(1)

	f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
	req.NoError(err)

	var wg sync.WaitGroup
	var hits []domain.Message
	var searchErr, uploadErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		hits, searchErr = f.service.Search(context.Background(), session.ID, "pizza", 5)
	}()
	<-searching

	f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(func(domain.Session, []byte) error {
		close(replacing)
		return nil
	}).Times(1)
	go func() {
		defer wg.Done()
		_, uploadErr = f.service.Upload(context.Background(), session.ID, "other.txt",
			[]byte("2/1/24, 9:00 AM - Carol: Morning\n"))
	}()
	<-replacing
	close(release)
	wg.Wait()

	req.NoError(searchErr)
	req.NoError(uploadErr)
	req.Len(hits, 1)
	req.Equal("Hello, pizza tonight?", hits[0].Body)
	req.Equal([]string{"search", "close"}, events)

	users, err := f.service.Users(session.ID)
	req.NoError(err)
	req.Equal([]string{metrics.Overall, "Carol"}, users)
}

func TestAnalyzerService_Close(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 0)
	f.repository.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	session, err := f.service.Upload(context.Background(), uuid.Nil, "chat.txt", []byte(chatExport))
	req.NoError(err)

	f.repository.EXPECT().Delete(session.ID).Return(nil).Times(1)
	req.NoError(f.service.Close(session.ID))

	_, err = f.service.Users(session.ID)
	req.ErrorIs(err, errors.ErrSessionNotFound)
	req.ErrorIs(f.service.Close(session.ID), errors.ErrSessionNotFound)
	req.Equal(0, f.monitoring.GetLatest().ActiveSessions)
}

func TestAnalyzerService_Sessions(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 0)
	stored := []domain.Session{{ID: uuid.New(), Filename: "chat.txt"}}
	f.repository.EXPECT().List().Return(stored, nil).Times(1)

	sessions, err := f.service.Sessions()
	req.NoError(err)
	req.Equal(stored, sessions)
}
