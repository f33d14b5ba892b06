package internal

import (
	"chat-analyzer/parser"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type Config struct {
	ExportFilepath string `env:"EXPORT_FILEPATH,required=true" validate:"required"`
	SelectedUser   string `env:"SELECTED_USER,default=Overall" validate:"required"`
	ExportFormat   string `env:"EXPORT_FORMAT,default=android-12h" validate:"required"`
	// DateLayout overrides the layout of the selected format when set.
	DateLayout     string `env:"DATE_LAYOUT"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	TopWords       int    `env:"TOP_WORDS,default=20" validate:"min=1"`
	TopUsers       int    `env:"TOP_USERS,default=0" validate:"min=0"`
	MaxUploadBytes int    `env:"MAX_UPLOAD_BYTES,default=52428800" validate:"min=1"`
	SearchQuery    string `env:"SEARCH_QUERY"`
	SearchLimit    int    `env:"SEARCH_LIMIT,default=10" validate:"min=1"`
	// ExtraStopWords is a comma separated list appended to the embedded stop words.
	ExtraStopWords string `env:"EXTRA_STOP_WORDS"`
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Format resolves the export format preset and applies the DATE_LAYOUT override.
func (c Config) Format() (parser.Format, error) {
	format, err := parser.FormatByName(c.ExportFormat)
	if err != nil {
		return parser.Format{}, err
	}
	if c.DateLayout != "" {
		format = format.WithLayout(c.DateLayout)
	}
	return format, nil
}

func (c Config) StopWords() []string {
	words := lo.Map(strings.Split(c.ExtraStopWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Compact(words)
}
