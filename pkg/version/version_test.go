package version

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info Info
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info != Version() {
		t.Errorf("got %+v, want %+v", info, Version())
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf)
	if got, want := buf.String(), "idkit version unknown\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
