package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects level and output format.
type Config struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// Build creates a logrus-backed Logger writing to stderr.
func (cfg Config) Build() (Logger, error) {
	return cfg.BuildTo(os.Stderr)
}

// BuildTo creates a logrus-backed Logger writing to out.
func (cfg Config) BuildTo(out io.Writer) (Logger, error) {
	l := logrus.New()
	l.SetOutput(out)

	if cfg.Level != "" {
		level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		l.SetLevel(level)
	}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return New(l), nil
}
