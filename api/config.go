package api

import (
	"errors"
	"strings"
	"time"
)

// Config is read with the HTTP prefix.
type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"5m"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("http addr is required")
	}
	return nil
}
