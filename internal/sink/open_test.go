package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleus/sharepoint-publisher/internal/config"
	"github.com/nucleus/sharepoint-publisher/internal/logging"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("stream has no downstream sink", func(t *testing.T) {
		s, closeFn, err := Open(ctx, config.SinkConfig{Kind: config.SinkStream}, logger)
		require.NoError(t, err)
		assert.Nil(t, s)
		assert.NoError(t, closeFn())
	})

	t.Run("object sink on local disk", func(t *testing.T) {
		cfg := config.Default().Sink
		cfg.Kind = config.SinkObject
		cfg.Object.LocalRoot = t.TempDir()

		s, closeFn, err := Open(ctx, cfg, logger)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &ObjectSink{}, s)
	})

	t.Run("nats sink", func(t *testing.T) {
		server := startTestNATSServer(t)
		cfg := config.Default().Sink
		cfg.Kind = config.SinkNATS
		cfg.NATS.URL = server.ClientURL()

		s, closeFn, err := Open(ctx, cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &NATSSink{}, s)
		assert.NoError(t, closeFn())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, closeFn, err := Open(ctx, config.SinkConfig{Kind: "kafka"}, logger)
		require.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}
