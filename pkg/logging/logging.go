// Package logging configures the apex/log logger of the command line.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// New builds a logger writing to w. format is "text" or "json".
func New(level, format string, w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	var h log.Handler
	switch format {
	case "", "text":
		h = text.New(w)
	case "json":
		h = json.New(w)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return &log.Logger{Handler: h, Level: lvl}, nil
}

// Setup builds the logger and installs it as the package-level apex logger.
func Setup(level, format string, w io.Writer) (*log.Logger, error) {
	l, err := New(level, format, w)
	if err != nil {
		return nil, err
	}
	log.SetHandler(l.Handler)
	log.SetLevel(l.Level)
	return l, nil
}
