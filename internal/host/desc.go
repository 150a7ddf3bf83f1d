package host

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sharepoint.publisher.v1.PublisherService"

const (
	methodInitialize     = "/" + ServiceName + "/Initialize"
	methodDiscoverShapes = "/" + ServiceName + "/DiscoverShapes"
	methodTestConnection = "/" + ServiceName + "/TestConnection"
	methodPublish        = "/" + ServiceName + "/Publish"
)

// PublisherServer is the server API of PublisherService.
type PublisherServer interface {
	Initialize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DiscoverShapes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TestConnection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Publish(*structpb.Struct, PublishStream) error
}

// PublishStream is the server side of a Publish call.
type PublishStream interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type publishStream struct {
	grpc.ServerStream
}

func (s *publishStream) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

// RegisterPublisherServer registers srv on s.
func RegisterPublisherServer(s grpc.ServiceRegistrar, srv PublisherServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler(method string, call func(PublisherServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PublisherServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PublisherServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func publishHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PublisherServer).Publish(in, &publishStream{stream})
}

// ServiceDesc describes PublisherService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PublisherServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Initialize",
			Handler:    unaryHandler(methodInitialize, PublisherServer.Initialize),
		},
		{
			MethodName: "DiscoverShapes",
			Handler:    unaryHandler(methodDiscoverShapes, PublisherServer.DiscoverShapes),
		},
		{
			MethodName: "TestConnection",
			Handler:    unaryHandler(methodTestConnection, PublisherServer.TestConnection),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Publish",
			Handler:       publishHandler,
			ServerStreams: true,
		},
	},
	Metadata: "sharepoint/publisher/v1/publisher.proto",
}
