package indexer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"creatorpay/crypto"
)

const maxListLimit = 500

// Handler serves the read model over HTTP.
func (ix *Indexer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		cursor, err := ix.Cursor(req.Context())
		if err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "cursor": cursor})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/creators", func(r chi.Router) {
		r.Get("/top", ix.serveTopCreators)
		r.Route("/{creator}", func(r chi.Router) {
			r.Get("/earnings", ix.serveEarnings)
			r.Get("/tips", ix.serveTips)
			r.Get("/subscribers", ix.serveSubscribers)
		})
	})
	return r
}

func (ix *Indexer) serveTopCreators(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 10)
	if !ok {
		return
	}
	out, err := ix.TopCreators(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (ix *Indexer) serveEarnings(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorParam(w, r)
	if !ok {
		return
	}
	out, err := ix.Earnings(r.Context(), creator)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSONError(w, http.StatusNotFound, "creator not indexed")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (ix *Indexer) serveTips(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorParam(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}
	out, err := ix.TipsFor(r.Context(), creator, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (ix *Indexer) serveSubscribers(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorParam(w, r)
	if !ok {
		return
	}
	out, err := ix.ActiveSubscribers(r.Context(), creator)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func creatorParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	creator := chi.URLParam(r, "creator")
	if _, err := crypto.ParseAccount(creator); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid creator address")
		return "", false
	}
	return creator, true
}

func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxListLimit {
		writeJSONError(w, http.StatusBadRequest, "limit must be within [1,500]")
		return 0, false
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
