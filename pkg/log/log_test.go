package log

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"idkit.io/v2/pkg/id"
)

func TestHTTPTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Output(&buf), StartDebug())

	var traceID string
	h := HTTP(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceID(r.Context())
		Info(FromContext(r.Context())).Log("msg", "inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ids/ulid", nil))

	if !id.IsValid(traceID) {
		t.Fatalf("expected a ulid trace id, got %q", traceID)
	}
	if got := rec.Header().Get(TraceHeader); got != traceID {
		t.Errorf("trace header: got %q, want %q", got, traceID)
	}

	out := buf.String()
	for _, want := range []string{
		`level=info trace_id=` + traceID + ` msg=inside`,
		`level=debug trace_id=` + traceID + ` method=GET status=418`,
		`path=/v1/ids/ulid`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("want %q in output, got:\n%s", want, out)
		}
	}
}

func TestHTTPReusesTraceHeader(t *testing.T) {
	incoming := id.New()

	var traceID string
	h := HTTP(Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if traceID != incoming {
		t.Errorf("got trace id %q, want %q", traceID, incoming)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "not a ulid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if traceID == "not a ulid" || !id.IsValid(traceID) {
		t.Errorf("expected a fresh trace id, got %q", traceID)
	}
}

func TestServerErrorsLoggedAtError(t *testing.T) {
	var buf bytes.Buffer
	h := HTTP(New(Output(&buf)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if out := buf.String(); !strings.Contains(out, "level=error") || !strings.Contains(out, "status=500") {
		t.Errorf("expected an error level request log, got:\n%s", out)
	}
}

func TestDebugFiltered(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Output(&buf))
	Debug(logger).Log("msg", "hidden")
	Info(logger).Log("msg", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormat(t *testing.T) {
	opt, err := Format("json")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	Info(New(Output(&buf), opt)).Log("msg", "hello")
	if out := buf.String(); !strings.HasPrefix(out, "{") || !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected json output, got %q", out)
	}

	if _, err := Format("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	if err := FromContext(context.Background()).Log("msg", "dropped"); err != nil {
		t.Errorf("nop logger: %s", err)
	}
}
