package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/spdb/internal/spdb"
)

func TestHandlerFuncE(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "no error", status: http.StatusNoContent},
		{
			name:    "not found",
			err:     fmt.Errorf("bookmark 001: %w", spdb.ErrNotFound),
			status:  http.StatusNotFound,
			message: "bookmark 001: resource not found",
		},
		{
			name:    "internal details are hidden",
			err:     errors.New("database is locked"),
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				req = httptest.NewRequest(http.MethodGet, "/", nil)
				rec = httptest.NewRecorder()
			)

			HandlerFuncE(func(w http.ResponseWriter, r *http.Request) error {
				if tt.err != nil {
					return tt.err
				}
				w.WriteHeader(http.StatusNoContent)
				return nil
			}).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.err == nil {
				return
			}
			var body struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query         string
		limit, offset int
	}{
		{query: "", limit: 50, offset: 0},
		{query: "?limit=10&offset=20", limit: 10, offset: 20},
		{query: "?limit=1000", limit: 50, offset: 0},
		{query: "?limit=-1&offset=-5", limit: 50, offset: 0},
		{query: "?limit=abc", limit: 50, offset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			limit, offset := ParsePagination(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), 50, 200)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
