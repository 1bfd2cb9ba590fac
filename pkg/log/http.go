package log

import (
	"context"
	"net"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// HTTP returns an HTTP logging middleware using the provided base logger.
// The trace ID is echoed back in the TraceHeader response header.
func HTTP(l Logger) func(http.Handler) http.Handler { return handler{logger: l}.decorate }

type handler struct{ logger Logger }

func (h handler) decorate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := newTraceContext(r.Context(), r.Header.Get(TraceHeader))
		ctx = NewContext(ctx, h.logger)
		w.Header().Set(TraceHeader, TraceID(ctx))

		// https://github.com/felixge/httpsnoop#why-this-package-exists
		m := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))
		logRequest(ctx, m, r)
	})
}

func logRequest(ctx context.Context, m httpsnoop.Metrics, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}

	keyvals := []interface{}{
		"method", r.Method,
		"status", m.Code,
		"proto", r.Proto,
		"host", host,
		"user_agent", r.UserAgent(),
		"path", uri,
		"bytes", m.Written,
		"duration", m.Duration,
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		keyvals = append(keyvals, "x_forwarded_for", fwd)
	}

	if m.Code >= 500 {
		Error(FromContext(ctx)).Log(keyvals...)
	} else {
		Debug(FromContext(ctx)).Log(keyvals...)
	}
}
