package errors_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spdberrs "github.com/jdholdren/spdb/internal/errors"
	"github.com/jdholdren/spdb/internal/spdb"
)

func TestEConstructor(t *testing.T) {
	got := spdberrs.E(
		"something went wrong",
		spdberrs.Detail{Field: "client_id", Error: "is required"},
		http.StatusBadRequest,
	)
	want := &spdberrs.Error{
		Err: errors.New("something went wrong"),
		Details: []spdberrs.Detail{
			{Field: "client_id", Error: "is required"},
		},
		Status: http.StatusBadRequest,
	}

	assert.Equal(t, want, got)
}

func TestJSONRoundTrip(t *testing.T) {
	byts, err := json.Marshal(spdberrs.E("bad tag", http.StatusBadRequest))
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"bad tag","status":400}`, string(byts))

	var got spdberrs.Error
	require.NoError(t, json.Unmarshal(byts, &got))
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.EqualError(t, got.Err, "bad tag")
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: fmt.Errorf("error fetching bookmark: %w", spdb.ErrNotFound), status: http.StatusNotFound},
		{name: "conflict", err: fmt.Errorf("bookmark 001: %w", spdb.ErrConflict), status: http.StatusConflict},
		{name: "invalid tag", err: spdb.ErrInvalidTag, status: http.StatusBadRequest},
		{name: "already structured", err: spdberrs.E(http.StatusTeapot, "short and stout"), status: http.StatusTeapot},
		{name: "anything else", err: errors.New("disk on fire"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spdberrs.FromDomain(tt.err)
			assert.Equal(t, tt.status, got.Status)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
