package http

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/plgd-dev/assethub/pkg/log"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	writer, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("not supported by the underlying writer")
	}
	return writer.Hijack()
}

// DefaultCodeToLevel returns the log function used for a response with the status code.
func DefaultCodeToLevel(code int, logger log.Logger) func(args ...interface{}) {
	switch code {
	case http.StatusForbidden,
		http.StatusPreconditionFailed,
		http.StatusUnavailableForLegalReasons,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return logger.Warn
	case http.StatusInternalServerError,
		http.StatusNotImplemented,
		http.StatusLoopDetected:
		return logger.Error
	}
	if code < 600 {
		return logger.Debug
	}
	return logger.Error
}

type cfg struct {
	logger log.Logger
}

type LogOpt = func(cfg) cfg

func WithLogger(logger log.Logger) LogOpt {
	return func(c cfg) cfg {
		c.logger = logger
		return c
	}
}

func CreateLoggingMiddleware(opts ...LogOpt) func(next http.Handler) http.Handler {
	cfg := cfg{
		logger: log.Get(),
	}
	for _, o := range opts {
		cfg = o(cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := statusWriter{ResponseWriter: w}
			next.ServeHTTP(&sw, r)
			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			duration := time.Since(start)
			logger := cfg.logger.With(log.DurationMSKey, log.DurationToMilliseconds(duration), "http.method", r.Method, "http.code", sw.status, "http.start_time", start, "http.href", r.RequestURI)
			doLog := DefaultCodeToLevel(sw.status, logger)
			doLog("finished http call with status code ", sw.status)
		})
	}
}
