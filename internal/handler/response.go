package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/posify/internal/collection"
)

const maxBodyBytes = 1 << 20

// envelope is the body of every API response.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Total      *int        `json:"total,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
	Stats      any         `json:"stats,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Warn("Encode response", zap.Error(err))
	}
}

func ok(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: data})
}

func created(w http.ResponseWriter, r *http.Request, data any, msg string) {
	writeJSON(w, r, http.StatusCreated, envelope{Success: true, Data: data, Message: msg})
}

func message(w http.ResponseWriter, r *http.Request, data any, msg string) {
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: data, Message: msg})
}

// paged writes a page with its total and pagination block. stats may be nil.
func paged[T any](w http.ResponseWriter, r *http.Request, p collection.Page[T], stats any) {
	total := p.Total
	writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Data:    p.Items,
		Total:   &total,
		Pagination: &pagination{
			Limit:   p.Limit,
			Offset:  p.Offset,
			HasMore: p.HasMore,
		},
		Stats: stats,
	})
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// pageParams parses limit and offset. Missing values are zero and get the
// collection defaults.
func pageParams(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 0 {
			return 0, 0, badRequest("invalid limit %q", s)
		}
	}
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil || offset < 0 {
			return 0, 0, badRequest("invalid offset %q", s)
		}
	}
	return limit, offset, nil
}
