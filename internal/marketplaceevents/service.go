package marketplaceevents

import (
	"context"

	"google.golang.org/grpc"
)

// Server is the GetMarketplaceEvents streaming RPC, implemented by
// internal/marketplaceevents's own Service (see server.go).
type Server interface {
	GetMarketplaceEvents(req *StreamRequest, stream MarketplaceEvents_GetMarketplaceEventsServer) error
}

// MarketplaceEvents_GetMarketplaceEventsServer is the server-side
// handle for one streaming call, mirroring the shape
// protoc-gen-go-grpc would emit for a server-streaming RPC.
type MarketplaceEvents_GetMarketplaceEventsServer interface {
	Send(*Event) error
	grpc.ServerStream
}

type marketplaceEventsGetMarketplaceEventsServer struct {
	grpc.ServerStream
}

func (s *marketplaceEventsGetMarketplaceEventsServer) Send(e *Event) error {
	return s.ServerStream.SendMsg(e)
}

func _MarketplaceEvents_GetMarketplaceEvents_Handler(srv interface{}, stream grpc.ServerStream) error {
	req := new(StreamRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(Server).GetMarketplaceEvents(req, &marketplaceEventsGetMarketplaceEventsServer{stream})
}

// ServiceDesc is registered on a *grpc.Server via RegisterServer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "marketplaceevents.MarketplaceEvents",
	HandlerType: (*Server)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetMarketplaceEvents",
			Handler:       _MarketplaceEvents_GetMarketplaceEvents_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "marketplaceevents.proto",
}

// RegisterServer registers srv on s. No codec is forced here: the server
// uses the registered JSON codec (see codec.go) for calls whose content
// subtype is "json", which NewClient sets.
func RegisterServer(s *grpc.Server, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// MarketplaceEventsClient is the client-side stub for GetMarketplaceEvents.
type MarketplaceEventsClient interface {
	GetMarketplaceEvents(ctx context.Context, req *StreamRequest, opts ...grpc.CallOption) (MarketplaceEvents_GetMarketplaceEventsClient, error)
}

type MarketplaceEvents_GetMarketplaceEventsClient interface {
	Recv() (*Event, error)
	grpc.ClientStream
}

type marketplaceEventsClient struct {
	cc *grpc.ClientConn
}

// NewClient builds a MarketplaceEventsClient over cc, forcing the JSON
// codec (see codec.go) since this service carries no protobuf schema.
func NewClient(cc *grpc.ClientConn) MarketplaceEventsClient {
	return &marketplaceEventsClient{cc: cc}
}

func (c *marketplaceEventsClient) GetMarketplaceEvents(ctx context.Context, req *StreamRequest, opts ...grpc.CallOption) (MarketplaceEvents_GetMarketplaceEventsClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype((jsonCodec{}).Name())}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/marketplaceevents.MarketplaceEvents/GetMarketplaceEvents", opts...)
	if err != nil {
		return nil, err
	}
	x := &marketplaceEventsGetMarketplaceEventsClient{stream}
	if err := x.ClientStream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type marketplaceEventsGetMarketplaceEventsClient struct {
	grpc.ClientStream
}

func (x *marketplaceEventsGetMarketplaceEventsClient) Recv() (*Event, error) {
	e := new(Event)
	if err := x.ClientStream.RecvMsg(e); err != nil {
		return nil, err
	}
	return e, nil
}
