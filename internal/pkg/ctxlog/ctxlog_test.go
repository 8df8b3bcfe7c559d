package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_Default(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	ctx = With(ctx, "run_id", "abc")
	ctx = With(ctx, "provider", "AnyMarket")

	FromContext(ctx).Info("fetched")

	assert.Contains(t, buf.String(), "run_id=abc")
	assert.Contains(t, buf.String(), "provider=AnyMarket")
	assert.Contains(t, buf.String(), "msg=fetched")
}
