package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Output       string `split_words:"true" default:"stdout"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
	Output:       "stdout",
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// New builds a logger writing to w. The caller owns w.
func New(w io.Writer, opts ...Config) zerolog.Logger {
	conf := safe(opts...)

	var logger zerolog.Logger
	if conf.PrettyFormat {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	if conf.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	return logger.With().Caller().Stack().Logger()
}

// Init replaces the global logger. The console REPL sets Output=stderr so
// log lines do not interleave with the conversation on stdout.
func Init(opts ...Config) {
	conf := safe(opts...)

	var w io.Writer = os.Stdout
	if strings.EqualFold(strings.TrimSpace(conf.Output), "stderr") {
		w = os.Stderr
	}

	log.Logger = New(w, *conf)
	zerolog.DefaultContextLogger = &log.Logger
}
