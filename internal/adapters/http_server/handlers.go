package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"structured_markup/internal/app"
	"structured_markup/internal/domain"
	"structured_markup/internal/schema"
)

type Handlers struct{ R *app.RenderService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/render", h.render)
	s.mux.Get("/v1/documents", h.documents)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETag hashes body into a weak validator.
func calcETag(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	return calcETag(body), body
}

// flag reads a boolean page-context flag. Absent or empty means false.
func flag(r *http.Request, name string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "", "0", "false", "off", "no":
		return false, nil
	case "1", "true", "on", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("%s must be one of 1, true, on, yes, 0, false, off, no", name)
	}
}

func parsePageContext(r *http.Request) (domain.PageContext, error) {
	var pc domain.PageContext
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"home", &pc.Home},
		{"post", &pc.SinglePost},
		{"event", &pc.EventPost},
		{"page", &pc.Page},
	} {
		v, err := flag(r, f.name)
		if err != nil {
			return domain.PageContext{}, err
		}
		*f.dst = v
	}
	return pc, nil
}

// writeIfChanged answers 304 when the client already holds etag.
func writeIfChanged(w http.ResponseWriter, r *http.Request, etag, contentType string, body []byte) {
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write response body")
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request) {
	pc, err := parsePageContext(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid page context", err.Error())
		return
	}
	var buf bytes.Buffer
	n := h.R.Render(r.Context(), pc, &buf)
	w.Header().Set("X-Document-Count", fmt.Sprint(n))
	writeIfChanged(w, r, calcETag(buf.Bytes()), "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handlers) documents(w http.ResponseWriter, r *http.Request) {
	pc, err := parsePageContext(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid page context", err.Error())
		return
	}
	docs := h.R.Documents(r.Context(), pc)
	if docs == nil {
		docs = []schema.Document{}
	}
	etag, body := calcETagAndBody(docs)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "documents could not be encoded")
		return
	}
	writeIfChanged(w, r, etag, "application/json", body)
}
