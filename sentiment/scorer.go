//go:generate go run go.uber.org/mock/mockgen -source=scorer.go -destination=../mocks/mock_scorer.go -package=mocks
package sentiment

// Scorer rates the polarity of a message body in [-1, 1].
// Implementations must be deterministic and free of side effects.
type Scorer interface {
	Score(text string) float64
}
