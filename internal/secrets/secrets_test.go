package secrets

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spdberrs "github.com/jdholdren/spdb/internal/errors"
)

const testSecrets = `client_id:abc123
client_secret:shh

username:gopher
password:hunter2:with:colons
user_agent:spdb/1.0 by u/gopher
`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(testSecrets))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"client_id":     "abc123",
		"client_secret": "shh",
		"username":      "gopher",
		"password":      "hunter2:with:colons",
		"user_agent":    "spdb/1.0 by u/gopher",
	}, got)
}

func TestParse_MissingColon(t *testing.T) {
	_, err := Parse(strings.NewReader("client_id:abc\njunk\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".secrets")
	require.NoError(t, os.WriteFile(path, []byte(testSecrets), 0o600))

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, Credentials{
		ClientID:     "abc123",
		ClientSecret: "shh",
		Username:     "gopher",
		Password:     "hunter2:with:colons",
		UserAgent:    "spdb/1.0 by u/gopher",
	}, creds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCredentialsFrom_Missing(t *testing.T) {
	_, err := CredentialsFrom(map[string]string{
		"client_id":  "abc123",
		"username":   "gopher",
		"user_agent": "spdb",
	})

	var sErr *spdberrs.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusBadRequest, sErr.Status)
	assert.Equal(t, []spdberrs.Detail{
		{Field: "client_secret", Error: "is required"},
		{Field: "password", Error: "is required"},
	}, sErr.Details)
}
