package logger

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))

	ctx = WithAction(ctx, "WebAsk")
	ctx = WithSession(ctx, "3f1c")
	ctx = WithChat(ctx, 4242)
	ctx = AddFields(ctx, zap.Strings("corpora", []string{"announcements"}))

	ctxzap.Info(ctx, "question answered")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "WebAsk", fields["action"])
	assert.Equal(t, "3f1c", fields["session_id"])
	assert.Equal(t, int64(4242), fields["chat_id"])
	assert.Equal(t, []interface{}{"announcements"}, fields["corpora"])
}

func TestFieldsDoNotLeakToParent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parent := ctxzap.ToContext(context.Background(), zap.New(core))

	_ = WithChat(parent, 1)
	ctxzap.Info(parent, "plain")

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "chat_id")
}
