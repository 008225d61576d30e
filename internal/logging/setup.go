package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tinoosan/apishell/internal/config"
)

// Setup builds the process logger from cfg. Console output goes to w; the
// rotating file and the remote shipper, when configured, receive JSON. The
// returned function flushes and closes those sinks.
func Setup(cfg config.Config, w io.Writer) (*slog.Logger, func(context.Context) error, error) {
	var (
		extra   []io.Writer
		closers []func(context.Context) error
	)

	if cfg.Log.ShipURL != "" {
		u, err := url.Parse(cfg.Log.ShipURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, nil, fmt.Errorf("invalid APP_LOG_SHIP_URL %q", cfg.Log.ShipURL)
		}
		sh := NewShipper(ShipperOptions{URL: cfg.Log.ShipURL, Token: cfg.Log.ShipToken})
		extra = append(extra, sh)
		closers = append(closers, sh.Close)
	}

	if cfg.Log.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		}
		extra = append(extra, lj)
		closers = append(closers, func(context.Context) error { return lj.Close() })
	}

	l := New(Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: cfg.ServiceName}, w, extra...)
	closeAll := func(ctx context.Context) error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c(ctx))
		}
		return errors.Join(errs...)
	}
	return l, closeAll, nil
}
