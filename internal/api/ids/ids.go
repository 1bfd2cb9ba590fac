// Package ids exposes identifier generation and inspection over HTTP.
package ids

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"idkit.io/v2/pkg/httpapi"
	"idkit.io/v2/pkg/id"
	"idkit.io/v2/pkg/log"
)

type Config struct {
	HTTP httpapi.Framework
}

type server struct {
	http httpapi.Framework
}

// HTTP registers the /v1/ids routes.
func HTTP(config Config) {
	srv := &server{http: config.HTTP}

	srv.http.HandleFunc("/v1/ids/ulid", srv.newULID)
	srv.http.HandleFunc("/v1/ids/ulid/{id}/time", srv.ulidTime)
	srv.http.HandleFunc("/v1/ids/uuid7", srv.newUUIDv7)
	srv.http.HandleFunc("/v1/ids/uuid7/{id}/time", srv.uuidv7Time)
	srv.http.HandleFunc("/v1/ids/uuid", srv.newUUID)
	srv.http.HandleFunc("/v1/ids/short", srv.newShort)
	srv.http.HandleFunc("/v1/ids/compare", srv.compare)
}

type idResponse struct {
	ID string `json:"id"`
}

type timeResponse struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp_ms"`
}

func (srv *server) newULID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ts := r.URL.Query().Get("ts")
	if ts == "" {
		srv.http.JSON(ctx, w, http.StatusOK, idResponse{ID: id.New()})
		return
	}

	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		srv.http.Fail(ctx, w, fmt.Errorf("ts %q is not an integer: %w", ts, id.ErrInvalidArgument))
		return
	}

	s, err := id.NewAt(ms)
	if err != nil {
		srv.http.Fail(ctx, w, err, "ts", ms)
		return
	}

	log.Debug(log.FromContext(ctx)).Log("msg", "generated ulid", "id", s, "ts", ms)
	srv.http.JSON(ctx, w, http.StatusOK, idResponse{ID: s})
}

func (srv *server) ulidTime(w http.ResponseWriter, r *http.Request) {
	s := mux.Vars(r)["id"]
	ms, err := id.Time(s)
	if err != nil {
		srv.http.Fail(r.Context(), w, err)
		return
	}
	srv.http.JSON(r.Context(), w, http.StatusOK, timeResponse{ID: s, Timestamp: ms})
}

func (srv *server) newUUIDv7(w http.ResponseWriter, r *http.Request) {
	srv.http.JSON(r.Context(), w, http.StatusOK, idResponse{ID: id.NewUUIDv7()})
}

func (srv *server) uuidv7Time(w http.ResponseWriter, r *http.Request) {
	s := mux.Vars(r)["id"]
	ms, err := id.UUIDv7Time(s)
	if err != nil {
		srv.http.Fail(r.Context(), w, err)
		return
	}
	srv.http.JSON(r.Context(), w, http.StatusOK, timeResponse{ID: s, Timestamp: ms})
}

func (srv *server) newUUID(w http.ResponseWriter, r *http.Request) {
	srv.http.JSON(r.Context(), w, http.StatusOK, idResponse{ID: id.NewUUID()})
}

func (srv *server) newShort(w http.ResponseWriter, r *http.Request) {
	srv.http.JSON(r.Context(), w, http.StatusOK, idResponse{ID: id.NewShort()})
}

func (srv *server) compare(w http.ResponseWriter, r *http.Request) {
	var (
		q    = r.URL.Query()
		a, b = q.Get("a"), q.Get("b")
	)

	c, err := id.Compare(a, b)
	if err != nil {
		srv.http.Fail(r.Context(), w, err)
		return
	}
	srv.http.JSON(r.Context(), w, http.StatusOK, map[string]int{"result": c})
}
