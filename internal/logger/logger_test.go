package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler_AddsAttrs(t *testing.T) {
	var (
		buf = &bytes.Buffer{}
		l   = slog.New(NewContextHandler(slog.NewJSONHandler(buf, nil)))
		ctx = Ctx(context.Background(), slog.String("sync_id", "abc"))
	)
	ctx = Ctx(ctx, slog.Int("page", 2))

	l.InfoContext(ctx, "fetched page")

	assert.Contains(t, buf.String(), `"sync_id":"abc"`)
	assert.Contains(t, buf.String(), `"page":2`)
}

func TestCtx_DoesNotShareParentAttrs(t *testing.T) {
	parent := Ctx(context.Background(), slog.String("a", "1"))
	left := Ctx(parent, slog.String("b", "2"))
	right := Ctx(parent, slog.String("c", "3"))

	assert.Len(t, left.Value(attrKey).([]slog.Attr), 2)
	assert.Equal(t, "c", right.Value(attrKey).([]slog.Attr)[1].Key)
	assert.Len(t, parent.Value(attrKey).([]slog.Attr), 1)
}

func TestNew_WritesDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, closer, err := New(Options{Format: "json", Dir: dir})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, closer.Close())

	byts, err := os.ReadFile(filepath.Join(dir, time.Now().Format(time.DateOnly)+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(byts), `"msg":"hello"`)
}
