package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/tinoosan/apishell/internal/apperr"
	"github.com/tinoosan/apishell/internal/logging"
)

// HeaderProcessTime carries the handling time in seconds.
const HeaderProcessTime = "X-Process-Time"

// AccessLog emits exactly one record per request: an INFO access record on
// the "access" logger when the handler completes, or an ERROR "Uncaught
// exception" record on the "core" logger when it fails. Failures are a
// recorded apperr.Fail error, a panic, or a cancelled request that wrote
// nothing. Failures are passed on untouched: panics are re-raised and
// recorded errors stay in place for ServerError.
func AccessLog(l *slog.Logger) func(http.Handler) http.Handler {
	access := logging.Named(l, "access")
	core := logging.Named(l, "core")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			rw := newRecorder(w)
			rw.onHeader = func(h http.Header) {
				h.Set(HeaderProcessTime, formatSeconds(time.Since(start)))
			}
			stampLate := func() {
				if !rw.wroteHeader {
					w.Header().Set(HeaderProcessTime, formatSeconds(time.Since(start)))
				}
			}

			done := false
			defer func() {
				if done {
					return
				}
				rec := recover()
				if rec == nil {
					// runtime.Goexit, nothing to propagate
					return
				}
				stampLate()
				core.LogAttrs(ctx, slog.LevelError, "Uncaught exception",
					slog.String("error", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())))
				panic(rec)
			}()

			next.ServeHTTP(rw, r)
			done = true

			err := apperr.Failure(ctx)
			if err == nil && !rw.wroteHeader && ctx.Err() != nil {
				err = ctx.Err()
			}
			stampLate()
			if err != nil {
				core.LogAttrs(ctx, slog.LevelError, "Uncaught exception",
					slog.String("error", err.Error()),
					slog.Bool("cancelled", errors.Is(err, context.Canceled)))
				return
			}

			elapsed := time.Since(start)
			status := rw.Status()
			host, port := clientAddr(r.RemoteAddr)
			url := r.URL.RequestURI()
			version := strconv.Itoa(r.ProtoMajor) + "." + strconv.Itoa(r.ProtoMinor)

			access.LogAttrs(ctx, slog.LevelInfo,
				fmt.Sprintf(`%s:%d - "%s %s HTTP/%s" %d`, host, port, r.Method, url, version, status),
				slog.Group("http",
					slog.String("url", url),
					slog.Int("status_code", status),
					slog.String("method", r.Method),
					slog.String("version", version),
				),
				slog.Group("network",
					slog.Group("client",
						slog.String("ip", host),
						slog.Int("port", port),
					),
				),
				slog.Int64("duration", elapsed.Nanoseconds()),
			)
		})
	}
}

func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func clientAddr(remote string) (string, int) {
	host, p, err := net.SplitHostPort(remote)
	if err != nil {
		return remote, 0
	}
	port, _ := strconv.Atoi(p)
	return host, port
}
