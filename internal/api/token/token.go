// Package token issues and inspects encrypted tokens over HTTP.
package token

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"idkit.io/v2/pkg/httpapi"
	"idkit.io/v2/pkg/log"
	"idkit.io/v2/pkg/token"
)

// Issuer is the subset of *token.Issuer used by the handlers.
type Issuer interface {
	GenerateFor(subject string, created time.Time) (string, error)
	Parse(tok string) (*token.Info, error)
	Refresh(tok string) (string, error)
}

type Config struct {
	HTTP   httpapi.Framework
	Issuer Issuer
}

type server struct {
	http   httpapi.Framework
	issuer Issuer
	now    func() time.Time
}

// HTTP registers the /v1/tokens routes.
func HTTP(config Config) {
	srv := &server{
		http:   config.HTTP,
		issuer: config.Issuer,
		now:    time.Now,
	}

	srv.http.HandleFunc("/v1/tokens", srv.create, http.MethodPost)
	srv.http.HandleFunc("/v1/tokens/{token}", srv.inspect)
	srv.http.HandleFunc("/v1/tokens/{token}/refresh", srv.refresh, http.MethodPost)
}

type createRequest struct {
	ID string `json:"id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type inspectResponse struct {
	Payload   map[string]interface{} `json:"payload"`
	ID        string                 `json:"jti"`
	IssuedAt  time.Time              `json:"issued_at"`
	ExpiresAt time.Time              `json:"expires_at"`
	Expired   bool                   `json:"expired"`
}

func (srv *server) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		srv.http.Fail(ctx, w, httpapi.WithStatus(http.StatusBadRequest, fmt.Errorf("decode request: %w", err)))
		return
	}
	if req.ID == "" {
		srv.http.Fail(ctx, w, httpapi.WithStatus(http.StatusBadRequest, fmt.Errorf("id is required")))
		return
	}

	tok, err := srv.issuer.GenerateFor(req.ID, srv.now())
	if err != nil {
		srv.http.Fail(ctx, w, err, "msg", "generate token", "subject", req.ID)
		return
	}

	log.Debug(log.FromContext(ctx)).Log("msg", "token issued", "subject", req.ID)
	srv.http.JSON(ctx, w, http.StatusCreated, tokenResponse{Token: tok})
}

func (srv *server) inspect(w http.ResponseWriter, r *http.Request) {
	info, err := srv.issuer.Parse(mux.Vars(r)["token"])
	if err != nil {
		srv.http.Fail(r.Context(), w, err)
		return
	}

	srv.http.JSON(r.Context(), w, http.StatusOK, inspectResponse{
		Payload:   info.Payload,
		ID:        info.ID,
		IssuedAt:  info.IssuedAt.UTC(),
		ExpiresAt: info.ExpiresAt.UTC(),
		Expired:   info.Expired(srv.now()),
	})
}

func (srv *server) refresh(w http.ResponseWriter, r *http.Request) {
	tok, err := srv.issuer.Refresh(mux.Vars(r)["token"])
	if err != nil {
		srv.http.Fail(r.Context(), w, err)
		return
	}
	srv.http.JSON(r.Context(), w, http.StatusOK, tokenResponse{Token: tok})
}
