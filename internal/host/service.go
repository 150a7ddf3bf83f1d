package host

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
	"github.com/nucleus/sharepoint-publisher/internal/logging"
	"github.com/nucleus/sharepoint-publisher/internal/sink"
)

// Trailer keys set at the end of a Publish stream.
const (
	TrailerRunID      = "x-run-id"
	TrailerDataPoints = "x-data-points"
)

// Service implements PublisherServer on top of one endpoint.Publisher.
type Service struct {
	publisher  endpoint.Publisher
	downstream endpoint.Sink
	logger     *logging.Logger

	// serializes Publish; downstream sinks hold per-run state
	publishMu sync.Mutex
}

// NewService creates the gRPC service. downstream may be nil, in which case
// data points go only to the caller's stream.
func NewService(publisher endpoint.Publisher, downstream endpoint.Sink, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		publisher:  publisher,
		downstream: downstream,
		logger:     logger.Named("host"),
	}
}

func (s *Service) Initialize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.publisher.Initialize(ctx, settingsFrom(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"success": res.Success,
		"shapes":  res.Shapes,
	})
}

func (s *Service) DiscoverShapes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	catalog, err := s.publisher.DiscoverShapes(ctx, settingsFrom(req))
	if err != nil {
		return nil, toStatus(err)
	}
	resp, err := catalogToStruct(catalog)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode catalog: %v", err)
	}
	return resp, nil
}

func (s *Service) TestConnection(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.publisher.ValidateConfig(ctx, settingsFrom(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"valid":   res.Valid,
		"message": res.Message,
		"code":    res.Code,
	})
}

func (s *Service) Publish(req *structpb.Struct, stream PublishStream) error {
	shape := req.GetFields()["shape_name"].GetStringValue()
	if shape == "" {
		return status.Error(codes.InvalidArgument, "shape_name is required")
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	ctx := stream.Context()
	out := sink.NewMultiSink(&streamSink{stream: stream}, s.downstream)
	res, err := s.publisher.Publish(ctx, &endpoint.PublishRequest{ShapeName: shape}, out)
	if err != nil {
		s.logger.Warn(ctx, "publish failed", zap.String("shape", shape), zap.Error(err))
		return toStatus(err)
	}

	stream.SetTrailer(metadata.Pairs(
		TrailerRunID, res.RunID,
		TrailerDataPoints, strconv.FormatInt(res.DataPoints, 10),
	))
	return nil
}

// streamSink writes each data point to the caller's Publish stream.
type streamSink struct {
	stream PublishStream
}

func (s *streamSink) Send(_ context.Context, batch []endpoint.DataPoint) error {
	for _, dp := range batch {
		msg, err := dataPointToStruct(dp)
		if err != nil {
			return err
		}
		if err := s.stream.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
