package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/inovacc/vetlink/internal/model"
)

// newLogger builds a text or JSON logger writing to w at the named level.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := model.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
