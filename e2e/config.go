package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_EXPORT_FILE is the chat export replayed by the scenarios
	ExportFile string `envconfig:"E2E_EXPORT_FILE" default:"testdata/chat.txt"`
	// E2E_PRINT_REPORT renders every analyzed report in the test logs
	PrintReport bool `envconfig:"E2E_PRINT_REPORT" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
