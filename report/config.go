package report

import (
	"github.com/kelseyhightower/envconfig"
)

type Options struct {
	// REPORT_COLOURS enables colorized section headers
	Colours bool `envconfig:"REPORT_COLOURS" default:"true"`
	// REPORT_MAX_ROWS caps every ranked table
	MaxRows int `envconfig:"REPORT_MAX_ROWS" default:"10"`
}

func LoadOptions() (Options, error) {
	var opts Options
	err := envconfig.Process("", &opts)
	return opts, err
}
