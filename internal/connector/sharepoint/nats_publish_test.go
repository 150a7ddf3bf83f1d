package sharepoint

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
	"github.com/nucleus/sharepoint-publisher/internal/sink"
)

func startNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	server, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func TestPublisher_PublishToNATSWithoutDeadline(t *testing.T) {
	server := startNATSServer(t)

	sub, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer sub.Close()
	msgs := make(chan *nats.Msg, 8)
	subscription, err := sub.ChanSubscribe("datapoints.Tasks", msgs)
	require.NoError(t, err)
	defer func() { _ = subscription.Unsubscribe() }()
	require.NoError(t, sub.Flush())

	nc, err := sink.ConnectNATS(server.ClientURL())
	require.NoError(t, err)
	out := sink.NewNATSSink(nc, "datapoints")
	defer out.Close()

	p, _, _ := newTestPublisher(t, contactsSite())
	ctx := context.Background()
	_, err = p.Initialize(ctx, testSettings)
	require.NoError(t, err)

	result, err := p.Publish(ctx, &endpoint.PublishRequest{ShapeName: "Tasks"}, out)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(3), result.DataPoints)

	var titles []any
	timeout := time.After(5 * time.Second)
	for len(titles) < 3 {
		select {
		case m := <-msgs:
			var env sink.Envelope
			require.NoError(t, json.Unmarshal(m.Data, &env))
			assert.Equal(t, result.RunID, env.RunID)
			titles = append(titles, env.Data["Title"])
		case <-timeout:
			t.Fatalf("received %d of 3 messages", len(titles))
		}
	}
	assert.Equal(t, []any{"one", "two", "three"}, titles)
}
