package host

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
	"github.com/nucleus/sharepoint-publisher/internal/logging"
	"github.com/nucleus/sharepoint-publisher/internal/sink"
)

type fakePublisher struct {
	catalog     *endpoint.Catalog
	records     map[string][]map[string]any
	settings    endpoint.Settings
	initialized bool
	discoverErr error
	panicky     bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		catalog: endpoint.NewCatalog([]endpoint.ShapeDefinition{{
			Name:        "Contacts",
			Description: "People we know",
			Properties: []endpoint.PropertyDefinition{
				{Name: "Title", Type: endpoint.PropertyTypeString},
				{Name: "Age", Type: endpoint.PropertyTypeNumber},
				{Name: "Email Address", Description: "Work email", Type: endpoint.PropertyTypeString},
			},
		}}),
		records: map[string][]map[string]any{
			"Contacts": {
				{"Title": "A", "Age": float64(30), "Email Address": "a@x.com"},
				{"Title": "B", "Age": nil, "Email Address": nil},
			},
		},
	}
}

func (f *fakePublisher) ID() string                          { return "fake" }
func (f *fakePublisher) GetDescriptor() *endpoint.Descriptor { return &endpoint.Descriptor{ID: "fake"} }
func (f *fakePublisher) Close() error                        { return nil }

func (f *fakePublisher) ValidateConfig(_ context.Context, settings endpoint.Settings) (*endpoint.ValidationResult, error) {
	if settings["site_url"] == "" || settings["site_url"] == nil {
		return &endpoint.ValidationResult{Valid: false, Message: "site_url is required", Code: endpoint.CodeInvalidConfig}, nil
	}
	return &endpoint.ValidationResult{Valid: true, Message: "Connected to Team"}, nil
}

func (f *fakePublisher) Initialize(ctx context.Context, settings endpoint.Settings) (*endpoint.InitializeResult, error) {
	if _, err := f.DiscoverShapes(ctx, settings); err != nil {
		return nil, err
	}
	return &endpoint.InitializeResult{Success: true, Shapes: f.catalog.Len()}, nil
}

func (f *fakePublisher) DiscoverShapes(_ context.Context, settings endpoint.Settings) (*endpoint.Catalog, error) {
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	f.settings = settings
	f.initialized = true
	return f.catalog, nil
}

func (f *fakePublisher) Publish(ctx context.Context, req *endpoint.PublishRequest, out endpoint.Sink) (*endpoint.PublishResult, error) {
	if f.panicky {
		panic("boom")
	}
	if !f.initialized {
		return nil, endpoint.WrapError(endpoint.CodeNotInitialized, false, endpoint.ErrNotInitialized)
	}
	shape, ok := f.catalog.Lookup(req.ShapeName)
	if !ok {
		return nil, endpoint.UnknownShapeError(req.ShapeName)
	}
	if ps, ok := out.(endpoint.ProvisioningSink); ok {
		if err := ps.Provision(ctx, "run-1", shape); err != nil {
			return nil, err
		}
	}
	var n int64
	for _, rec := range f.records[shape.Name] {
		dp := endpoint.DataPoint{Action: endpoint.ActionUpsert, Entity: shape.Name, Data: rec}
		if err := out.Send(ctx, []endpoint.DataPoint{dp}); err != nil {
			return nil, err
		}
		n++
	}
	if fs, ok := out.(endpoint.FlushingSink); ok {
		if err := fs.Flush(ctx); err != nil {
			return nil, err
		}
	}
	return &endpoint.PublishResult{Success: true, RunID: "run-1", DataPoints: n}, nil
}

type harness struct {
	client *Client
	conn   *grpc.ClientConn
	logger *logging.TestLogger
}

func startHost(t *testing.T, pub endpoint.Publisher, downstream endpoint.Sink) *harness {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	logger := logging.NewTestLogger()
	srv := NewServer(NewService(pub, downstream, logger.Logger), logger.Logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: NewClient(conn), conn: conn, logger: logger}
}

var teamSettings = endpoint.Settings{
	"site_url": "https://sp.example.com/sites/team",
	"username": "alice",
	"password": "s3cret",
}

func TestInitialize(t *testing.T) {
	pub := newFakePublisher()
	h := startHost(t, pub, nil)

	resp, err := h.client.Initialize(context.Background(), teamSettings)
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["success"].GetBoolValue())
	assert.Equal(t, float64(1), resp.GetFields()["shapes"].GetNumberValue())
	assert.Equal(t, "https://sp.example.com/sites/team", pub.settings["site_url"])
}

func TestDiscoverShapes_RoundTripsCatalog(t *testing.T) {
	pub := newFakePublisher()
	h := startHost(t, pub, nil)

	catalog, err := h.client.DiscoverShapes(context.Background(), teamSettings)
	require.NoError(t, err)
	assert.Equal(t, pub.catalog.Shapes(), catalog.Shapes())
}

func TestDiscoverShapes_ConnectionErrorIsUnavailable(t *testing.T) {
	pub := newFakePublisher()
	pub.discoverErr = endpoint.ConnectionError(errors.New("site unreachable"))
	h := startHost(t, pub, nil)

	_, err := h.client.DiscoverShapes(context.Background(), teamSettings)
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestTestConnection(t *testing.T) {
	h := startHost(t, newFakePublisher(), nil)

	resp, err := h.client.TestConnection(context.Background(), teamSettings)
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["valid"].GetBoolValue())
	assert.Equal(t, "Connected to Team", resp.GetFields()["message"].GetStringValue())

	resp, err = h.client.TestConnection(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, resp.GetFields()["valid"].GetBoolValue())
	assert.Equal(t, endpoint.CodeInvalidConfig, resp.GetFields()["code"].GetStringValue())
}

func TestPublish_StreamsAndTeesDownstream(t *testing.T) {
	pub := newFakePublisher()
	downstream := sink.NewMemorySink()
	h := startHost(t, pub, downstream)
	ctx := context.Background()

	_, err := h.client.Initialize(ctx, teamSettings)
	require.NoError(t, err)

	var got []endpoint.DataPoint
	trailer, err := h.client.Publish(ctx, "Contacts", func(dp endpoint.DataPoint) error {
		got = append(got, dp)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, endpoint.ActionUpsert, got[0].Action)
	assert.Equal(t, "Contacts", got[0].Entity)
	assert.Equal(t, map[string]any{"Title": "A", "Age": float64(30), "Email Address": "a@x.com"}, got[0].Data)
	assert.Equal(t, map[string]any{"Title": "B", "Age": nil, "Email Address": nil}, got[1].Data)

	assert.Equal(t, []string{"run-1"}, trailer.Get(TrailerRunID))
	assert.Equal(t, []string{"2"}, trailer.Get(TrailerDataPoints))

	assert.Equal(t, "run-1", downstream.RunID())
	assert.Len(t, downstream.DataPoints(), 2)
	assert.Equal(t, 1, downstream.Flushes())
}

func TestPublish_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	noop := func(endpoint.DataPoint) error { return nil }

	t.Run("unknown shape", func(t *testing.T) {
		h := startHost(t, newFakePublisher(), nil)
		_, err := h.client.Initialize(ctx, teamSettings)
		require.NoError(t, err)

		_, err = h.client.Publish(ctx, "Nope", noop)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("not initialized", func(t *testing.T) {
		h := startHost(t, newFakePublisher(), nil)
		_, err := h.client.Publish(ctx, "Contacts", noop)
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})

	t.Run("missing shape name", func(t *testing.T) {
		h := startHost(t, newFakePublisher(), nil)
		_, err := h.client.Publish(ctx, "", noop)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestPublish_PanicIsRecovered(t *testing.T) {
	pub := newFakePublisher()
	pub.panicky = true
	h := startHost(t, pub, nil)

	_, err := h.client.Publish(context.Background(), "Contacts", func(endpoint.DataPoint) error { return nil })
	assert.Equal(t, codes.Internal, status.Code(err))
	h.logger.AssertLogged(t, zapcore.ErrorLevel, "panic in handler")
}

func TestHealth_Serving(t *testing.T) {
	h := startHost(t, newFakePublisher(), nil)

	resp, err := grpc_health_v1.NewHealthClient(h.conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"unknown shape", endpoint.UnknownShapeError("X"), codes.NotFound},
		{"bare unknown shape", endpoint.ErrUnknownShape, codes.NotFound},
		{"not initialized", endpoint.WrapError(endpoint.CodeNotInitialized, false, endpoint.ErrNotInitialized), codes.FailedPrecondition},
		{"connection", endpoint.ConnectionError(errors.New("refused")), codes.Unavailable},
		{"invalid config", endpoint.WrapError(endpoint.CodeInvalidConfig, false, errors.New("bad url")), codes.InvalidArgument},
		{"sink write", endpoint.WrapError(endpoint.CodeSinkWrite, true, errors.New("disk full")), codes.Internal},
		{"plain", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codeFor(tt.err))
		})
	}
}

func TestDataPointToStruct_FallsBackToJSON(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg, err := dataPointToStruct(endpoint.DataPoint{
		Action: endpoint.ActionUpsert,
		Entity: "Tasks",
		Data:   map[string]any{"Due": when, "Done": true},
	})
	require.NoError(t, err)

	dp := DataPointFromStruct(msg)
	assert.Equal(t, "2024-05-01T12:00:00Z", dp.Data["Due"])
	assert.Equal(t, true, dp.Data["Done"])
}
