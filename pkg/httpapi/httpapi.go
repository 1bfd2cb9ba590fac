// Package httpapi provides a lightweight framework for the idkit JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"

	"idkit.io/v2/pkg/log"
	"idkit.io/v2/pkg/version"
)

// Framework specifies methods API sub-packages depend on.
// Server is the only Framework implementation.
type Framework interface {
	Fail(ctx context.Context, w http.ResponseWriter, err error, keyvals ...interface{})
	JSON(ctx context.Context, w http.ResponseWriter, code int, v interface{})
	HandleFunc(path string, f func(http.ResponseWriter, *http.Request), methods ...string)
}

// Server implements Framework.
type Server struct {
	r *mux.Router

	// errors matching any of these with errors.Is are reported as 400s.
	badRequest []error
}

// Config parameters to create a new Server.
type Config struct {
	Logger log.Logger

	// BadRequest lists sentinel errors that are the client's fault.
	BadRequest []error
}

// New creates a Server.
func New(config Config) *Server {
	srv := &Server{
		r:          mux.NewRouter(),
		badRequest: config.BadRequest,
	}

	srv.r.Use(
		log.HTTP(config.Logger), // HTTP logging middleware.
		srv.recoverPanic,        // convert any panic into 500 errors.
	)

	// have to set middleware for NotFoundHandler separate from matched routes.
	srv.r.NotFoundHandler = log.HTTP(config.Logger)(http.HandlerFunc(srv.notFound))
	srv.r.MethodNotAllowedHandler = log.HTTP(config.Logger)(http.HandlerFunc(srv.methodNotAllowed))

	srv.r.Handle("/version", version.Handler()).Methods(http.MethodGet)
	srv.r.HandleFunc("/healthz", srv.healthz).Methods(http.MethodGet)

	return srv
}

// Handler returns the mux router used by the Server.
func (srv *Server) Handler() http.Handler { return srv.r }

// HandleFunc wraps *mux.Router, allowing other packages to register with the router.
func (srv *Server) HandleFunc(path string, f func(http.ResponseWriter, *http.Request), methods ...string) {
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	srv.r.HandleFunc(path, f).Methods(methods...)
}

type errorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id"`
}

// Fail writes a JSON error. Errors registered as bad requests, or errors
// implementing StatusCode() int, set the status, everything else is a 500.
// keyvals are logged along with the error.
func (srv *Server) Fail(ctx context.Context, w http.ResponseWriter, err error, keyvals ...interface{}) {
	var (
		logger = log.FromContext(ctx)
		code   = srv.statusCode(err)
		kv     = append([]interface{}{"err", err, "status", code}, keyvals...)
	)

	msg := http.StatusText(code)
	if code < 500 {
		msg = err.Error()
		log.Debug(logger).Log(kv...)
	} else {
		log.Info(logger).Log(kv...)
	}

	srv.JSON(ctx, w, code, errorResponse{Error: msg, TraceID: log.TraceID(ctx)})
}

func (srv *Server) statusCode(err error) int {
	var coded interface {
		error
		StatusCode() int
	}
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}

	for _, target := range srv.badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// JSON writes v as an indented JSON document with the given status code.
func (srv *Server) JSON(ctx context.Context, w http.ResponseWriter, code int, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Info(log.FromContext(ctx)).Log("msg", "encode json response", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	w.Write(append(data, '\n'))
}

// statusError pairs an error with an HTTP status code.
type statusError struct {
	code int
	err  error
}

func (e statusError) Error() string   { return e.err.Error() }
func (e statusError) Unwrap() error   { return e.err }
func (e statusError) StatusCode() int { return e.code }

// WithStatus makes Fail report err with the given HTTP status code.
func WithStatus(code int, err error) error { return statusError{code: code, err: err} }

func (srv *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				srv.Fail(r.Context(), w, fmt.Errorf("panic: %v", err), "msg", "recover panic", "stack", string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (srv *Server) notFound(w http.ResponseWriter, r *http.Request) {
	srv.Fail(r.Context(), w, WithStatus(http.StatusNotFound, errors.New("not found")), "path", r.URL.Path)
}

func (srv *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	srv.Fail(r.Context(), w, WithStatus(http.StatusMethodNotAllowed, errors.New("method not allowed")), "method", r.Method)
}

func (srv *Server) healthz(w http.ResponseWriter, r *http.Request) {
	srv.JSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
