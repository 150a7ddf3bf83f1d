package host

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// Client calls PublisherService over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func settingsRequest(settings endpoint.Settings) (*structpb.Struct, error) {
	if settings == nil {
		settings = endpoint.Settings{}
	}
	return structpb.NewStruct(map[string]any{"settings": settings})
}

func (c *Client) unary(ctx context.Context, method string, settings endpoint.Settings) (*structpb.Struct, error) {
	in, err := settingsRequest(settings)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Initialize(ctx context.Context, settings endpoint.Settings) (*structpb.Struct, error) {
	return c.unary(ctx, methodInitialize, settings)
}

func (c *Client) DiscoverShapes(ctx context.Context, settings endpoint.Settings) (*endpoint.Catalog, error) {
	out, err := c.unary(ctx, methodDiscoverShapes, settings)
	if err != nil {
		return nil, err
	}
	return CatalogFromStruct(out), nil
}

func (c *Client) TestConnection(ctx context.Context, settings endpoint.Settings) (*structpb.Struct, error) {
	return c.unary(ctx, methodTestConnection, settings)
}

// Publish streams a shape and calls fn for each data point received. It
// returns the stream trailer, which carries the run ID and data point count.
func (c *Client) Publish(ctx context.Context, shapeName string, fn func(endpoint.DataPoint) error) (metadata.MD, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], methodPublish)
	if err != nil {
		return nil, err
	}
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"shape_name": structpb.NewStringValue(shapeName),
	}}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	for {
		msg := new(structpb.Struct)
		err := stream.RecvMsg(msg)
		if errors.Is(err, io.EOF) {
			return stream.Trailer(), nil
		}
		if err != nil {
			return nil, err
		}
		if err := fn(DataPointFromStruct(msg)); err != nil {
			return nil, err
		}
	}
}
