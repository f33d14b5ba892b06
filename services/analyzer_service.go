package services

import (
	"chat-analyzer/domain"
	"chat-analyzer/domain/mimetypes"
	"chat-analyzer/errors"
	"chat-analyzer/metrics"
	"chat-analyzer/observability"
	"chat-analyzer/parser"
	"chat-analyzer/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type IAnalyzerService interface {
	Upload(ctx context.Context, id uuid.UUID, filename string, raw []byte) (domain.Session, error)
	Users(id uuid.UUID) ([]string, error)
	Analyze(ctx context.Context, id uuid.UUID, user string) (metrics.Report, error)
	Search(ctx context.Context, id uuid.UUID, query string, limit int) ([]domain.Message, error)
	Close(id uuid.UUID) error
}

// IndexFactory opens an empty message index for a new upload.
type IndexFactory func() (repositories.IMessageIndex, error)

// dataset is one parsed upload. Searches hold the read lock so the index
// is never closed under them.
type dataset struct {
	mu      sync.RWMutex
	closed  bool
	session domain.Session
	export  *domain.Export
	index   repositories.IMessageIndex
}

// search returns false once the dataset has been replaced or closed.
func (d *dataset) search(ctx context.Context, query string, limit int) ([]domain.Message, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, false, nil
	}
	positions, err := d.index.Search(ctx, query, limit)
	if err != nil {
		return nil, true, err
	}
	messages := make([]domain.Message, 0, len(positions))
	for _, p := range positions {
		if p < 0 || p >= d.export.Len() {
			continue
		}
		messages = append(messages, d.export.At(p))
	}
	return messages, true, nil
}

func (d *dataset) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.index.Close()
}

// AnalyzerService keeps one parsed export per session. Sessions never share state,
// the service mutex only guards the session map.
type AnalyzerService struct {
	mu             sync.Mutex
	log            *slog.Logger
	parser         *parser.Parser
	engine         *metrics.Engine
	repository     repositories.ISessionRepository
	newIndex       IndexFactory
	monitoring     *observability.MonitoringManager
	maxUploadBytes int
	datasets       map[uuid.UUID]*dataset
}

func NewAnalyzerService(
	log *slog.Logger,
	parser *parser.Parser,
	engine *metrics.Engine,
	repository repositories.ISessionRepository,
	newIndex IndexFactory,
	monitoring *observability.MonitoringManager,
	maxUploadBytes int,
) *AnalyzerService {
	return &AnalyzerService{
		log:            log,
		parser:         parser,
		engine:         engine,
		repository:     repository,
		newIndex:       newIndex,
		monitoring:     monitoring,
		maxUploadBytes: maxUploadBytes,
		datasets:       make(map[uuid.UUID]*dataset),
	}
}

// Upload parses raw into the session identified by id, uuid.Nil opens a new session.
// A failed upload leaves the previous dataset of the session untouched.
func (s *AnalyzerService) Upload(ctx context.Context, id uuid.UUID, filename string, raw []byte) (domain.Session, error) {
	if id != uuid.Nil && !s.exists(id) {
		return domain.Session{}, fmt.Errorf("%w: %s", errors.ErrSessionNotFound, id)
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	log := s.log.With("session", id, "filename", filename)

	detected, err := s.validate(raw)
	if err != nil {
		s.monitoring.RecordUpload(id.String(), filename, detected, len(raw), err)
		log.Warn("Upload rejected", "size", len(raw), "mime", detected, "error", err)
		return domain.Session{}, err
	}
	if err = ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	start := time.Now()
	export, err := s.parser.Parse(string(raw))
	if err != nil {
		s.monitoring.RecordUpload(id.String(), filename, detected, len(raw), err)
		log.Warn("Export could not be parsed", "error", err)
		return domain.Session{}, fmt.Errorf("upload %q: %w", filename, err)
	}

	index, err := s.newIndex()
	if err != nil {
		return domain.Session{}, fmt.Errorf("open message index: %w", err)
	}
	if err = index.Index(export); err != nil {
		_ = index.Close()
		return domain.Session{}, fmt.Errorf("index messages: %w", err)
	}

	session := domain.Session{
		ID:         id,
		Filename:   filename,
		Format:     s.parser.Format().Name,
		Size:       len(raw),
		Messages:   export.Len(),
		Skipped:    len(export.Skipped()),
		UploadedAt: time.Now().UTC(),
	}
	if err = s.repository.Store(session, raw); err != nil {
		_ = index.Close()
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}

	s.mu.Lock()
	previous := s.datasets[id]
	s.datasets[id] = &dataset{session: session, export: export, index: index}
	active := len(s.datasets)
	s.mu.Unlock()

	if previous != nil {
		if err := previous.close(); err != nil {
			log.Debug("Error while closing previous index", "error", err)
		}
		log.Info("Session dataset replaced", "previous", previous.session.Filename)
	}

	s.monitoring.RecordUpload(id.String(), filename, detected, len(raw), nil)
	s.monitoring.IncrSkippedLines(session.Skipped)
	s.monitoring.SetActiveSessions(active)
	log.Info("Export loaded",
		"messages", session.Messages,
		"skipped", session.Skipped,
		"senders", len(export.Senders()),
		"duration", time.Since(start))
	return session, nil
}

func (s *AnalyzerService) validate(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.ErrEmptyUpload
	}
	if s.maxUploadBytes > 0 && len(raw) > s.maxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", errors.ErrUploadTooLarge, len(raw), s.maxUploadBytes)
	}
	detected, ok := mimetypes.IsText(raw)
	if !ok {
		return detected, fmt.Errorf("%w: detected %s", errors.ErrUnsupportedUpload, detected)
	}
	return detected, nil
}

// Users lists the selectable views of the session, "Overall" first.
func (s *AnalyzerService) Users(id uuid.UUID) ([]string, error) {
	d, err := s.dataset(id)
	if err != nil {
		return nil, err
	}
	return metrics.UserOptions(d.export), nil
}

func (s *AnalyzerService) Analyze(ctx context.Context, id uuid.UUID, user string) (metrics.Report, error) {
	d, err := s.dataset(id)
	if err != nil {
		return metrics.Report{}, err
	}
	start := time.Now()
	report, err := s.engine.Run(ctx, user, d.export)
	if err != nil {
		s.log.Warn("Analysis aborted", "session", id, "user", user, "error", err)
		return metrics.Report{}, err
	}
	s.monitoring.IncrAnalyses()
	s.log.Info("Analysis done",
		"session", id,
		"user", user,
		"empty", report.Empty,
		"messages", report.Stats.Messages,
		"duration", time.Since(start))
	return report, nil
}

// Search returns the messages matching query, most relevant first.
// A search racing an upload of the same session runs against whichever dataset is current.
func (s *AnalyzerService) Search(ctx context.Context, id uuid.UUID, query string, limit int) ([]domain.Message, error) {
	for {
		d, err := s.dataset(id)
		if err != nil {
			return nil, err
		}
		messages, ok, err := d.search(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		if !ok {
			continue
		}
		s.log.Debug("Search done", "session", id, "query", query, "hits", len(messages))
		return messages, nil
	}
}

// Sessions lists the stored session metadata.
func (s *AnalyzerService) Sessions() ([]domain.Session, error) {
	return s.repository.List()
}

// Close discards the session dataset, its index and stored upload.
func (s *AnalyzerService) Close(id uuid.UUID) error {
	s.mu.Lock()
	d, ok := s.datasets[id]
	delete(s.datasets, id)
	active := len(s.datasets)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrSessionNotFound, id)
	}

	s.monitoring.SetActiveSessions(active)
	if err := d.close(); err != nil {
		s.log.Debug("Error while closing index", "session", id, "error", err)
	}
	if err := s.repository.Delete(id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info("Session closed", "session", id)
	return nil
}

func (s *AnalyzerService) exists(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.datasets[id]
	return ok
}

func (s *AnalyzerService) dataset(id uuid.UUID) (*dataset, error) {
	if id == uuid.Nil {
		return nil, errors.ErrNoDataset
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrSessionNotFound, id)
	}
	return d, nil
}
