// Package codec exposes the text codecs over HTTP.
//
// Encode takes the raw request body and returns text. Decode takes text and
// returns raw bytes as application/octet-stream.
package codec

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"idkit.io/v2/pkg/codec"
	"idkit.io/v2/pkg/httpapi"
)

// MaxBodySize caps encode and decode request bodies.
const MaxBodySize = 1 << 20

type scheme struct {
	encode func([]byte) string
	decode func(string) ([]byte, error)
}

var schemes = map[string]scheme{
	"base36":    {encode: codec.EncodeBase36, decode: codec.DecodeBase36},
	"base64":    {encode: codec.EncodeBase64, decode: codec.DecodeBase64},
	"base64url": {encode: codec.EncodeURLSafe, decode: codec.DecodeURLSafe},
}

type Config struct {
	HTTP httpapi.Framework
}

type server struct {
	http httpapi.Framework
}

// HTTP registers the /v1/codec routes.
func HTTP(config Config) {
	srv := &server{http: config.HTTP}

	srv.http.HandleFunc("/v1/codec/{scheme}/encode", srv.encode, http.MethodPost)
	srv.http.HandleFunc("/v1/codec/{scheme}/decode", srv.decode, http.MethodPost)
}

func (srv *server) read(w http.ResponseWriter, r *http.Request) (scheme, []byte, error) {
	name := mux.Vars(r)["scheme"]
	sc, ok := schemes[name]
	if !ok {
		return scheme{}, nil, httpapi.WithStatus(http.StatusNotFound, fmt.Errorf("unknown scheme %q", name))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return scheme{}, nil, httpapi.WithStatus(http.StatusRequestEntityTooLarge, err)
		}
		return scheme{}, nil, fmt.Errorf("read request body: %w", err)
	}
	return sc, body, nil
}

type encodeResponse struct {
	Text string `json:"text"`
}

func (srv *server) encode(w http.ResponseWriter, r *http.Request) {
	sc, body, err := srv.read(w, r)
	if err != nil {
		srv.http.Fail(r.Context(), w, err)
		return
	}
	srv.http.JSON(r.Context(), w, http.StatusOK, encodeResponse{Text: sc.encode(body)})
}

func (srv *server) decode(w http.ResponseWriter, r *http.Request) {
	sc, body, err := srv.read(w, r)
	if err != nil {
		srv.http.Fail(r.Context(), w, err)
		return
	}

	out, err := sc.decode(strings.TrimSpace(string(body)))
	if err != nil {
		srv.http.Fail(r.Context(), w, err, "scheme", mux.Vars(r)["scheme"])
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(out)
}
