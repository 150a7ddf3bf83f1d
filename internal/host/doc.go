// Package host adapts an endpoint.Publisher to gRPC.
//
// The service is declared by hand with google.protobuf.Struct messages:
//
//	sharepoint.publisher.v1.PublisherService
//	  Initialize(Struct)     returns (Struct)
//	  DiscoverShapes(Struct) returns (Struct)
//	  TestConnection(Struct) returns (Struct)
//	  Publish(Struct)        returns (stream Struct)
//
// Requests carry {"settings": {...}} or {"shape_name": "..."}; Publish streams
// one {"action", "entity", "data"} message per data point.
package host
