package e2e

import (
	"chat-analyzer/classifier"
	"chat-analyzer/metrics"
	"chat-analyzer/observability"
	"chat-analyzer/parser"
	"chat-analyzer/repositories"
	"chat-analyzer/sentiment"
	"chat-analyzer/services"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Header prints a colorized step title in the test logs
func (s *BaseSuite) Header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// NewService wires the whole analyzer on top of an in-memory badger instance.
func (s *BaseSuite) NewService(format string) *services.AnalyzerService {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	f, err := parser.FormatByName(format)
	s.Require().NoError(err)
	p, err := parser.New(f, log)
	s.Require().NoError(err)
	c, err := classifier.NewDefault()
	s.Require().NoError(err)
	scorer, err := sentiment.NewDefaultScorer()
	s.Require().NoError(err)
	engine, err := metrics.New(c, scorer, metrics.Options{TopWords: 10})
	s.Require().NoError(err)

	db, err := repositories.OpenInMemory()
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	return services.NewAnalyzerService(
		log,
		p,
		engine,
		repositories.NewSessionRepository(db, log),
		func() (repositories.IMessageIndex, error) { return repositories.NewMessageIndex(log) },
		observability.NewMonitoringManager(log),
		1<<20,
	)
}

// WithService runs fn inside a titled step with a bounded context
func (s *BaseSuite) WithService(service *services.AnalyzerService, name string, fn func(ctx context.Context, service *services.AnalyzerService)) {
	s.Header(s.T(), name)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fn(ctx, service)
}
