// Package rpc describes the journal.v1.Journal gRPC service. Messages are
// protobuf well-known types: entries travel as structpb documents so the
// stored record shape is also the wire shape.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "journal.v1.Journal"

// Full method names, used by interceptors.
const (
	MethodSignUp        = "/" + ServiceName + "/SignUp"
	MethodSignIn        = "/" + ServiceName + "/SignIn"
	MethodRefreshToken  = "/" + ServiceName + "/RefreshToken"
	MethodPing          = "/" + ServiceName + "/Ping"
	MethodCreateEntry   = "/" + ServiceName + "/CreateEntry"
	MethodUpdateEntry   = "/" + ServiceName + "/UpdateEntry"
	MethodDeleteEntry   = "/" + ServiceName + "/DeleteEntry"
	MethodGetEntry      = "/" + ServiceName + "/GetEntry"
	MethodExportEntries = "/" + ServiceName + "/ExportEntries"
	MethodWatchEntries  = "/" + ServiceName + "/WatchEntries"
)

// PublicMethods do not require an access token.
var PublicMethods = map[string]bool{
	MethodSignUp:       true,
	MethodSignIn:       true,
	MethodRefreshToken: true,
	MethodPing:         true,
}

// JournalServer is implemented by the server.
type JournalServer interface {
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	CreateEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEntry(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteEntry(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportEntries(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchEntries(*emptypb.Empty, Journal_WatchEntriesServer) error
}

// Journal_WatchEntriesServer is the server side of the snapshot stream.
type Journal_WatchEntriesServer = grpc.ServerStreamingServer[structpb.Struct]

// Journal_WatchEntriesClient is the client side of the snapshot stream.
type Journal_WatchEntriesClient = grpc.ServerStreamingClient[structpb.Struct]

// UnimplementedJournalServer can be embedded to get forward-compatible
// implementations that answer Unimplemented.
type UnimplementedJournalServer struct{}

func (UnimplementedJournalServer) SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedJournalServer) SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedJournalServer) RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedJournalServer) Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedJournalServer) CreateEntry(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateEntry not implemented")
}
func (UnimplementedJournalServer) UpdateEntry(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateEntry not implemented")
}
func (UnimplementedJournalServer) DeleteEntry(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteEntry not implemented")
}
func (UnimplementedJournalServer) GetEntry(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEntry not implemented")
}
func (UnimplementedJournalServer) ExportEntries(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ExportEntries not implemented")
}
func (UnimplementedJournalServer) WatchEntries(*emptypb.Empty, Journal_WatchEntriesServer) error {
	return status.Error(codes.Unimplemented, "method WatchEntries not implemented")
}

// RegisterJournalServer registers srv on s.
func RegisterJournalServer(s grpc.ServiceRegistrar, srv JournalServer) {
	s.RegisterService(&Journal_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(JournalServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(JournalServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(JournalServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchEntriesHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(JournalServer).WatchEntries(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// Journal_ServiceDesc is the grpc.ServiceDesc for journal.v1.Journal.
var Journal_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JournalServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unaryHandler(MethodSignUp, JournalServer.SignUp)},
		{MethodName: "SignIn", Handler: unaryHandler(MethodSignIn, JournalServer.SignIn)},
		{MethodName: "RefreshToken", Handler: unaryHandler(MethodRefreshToken, JournalServer.RefreshToken)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, JournalServer.Ping)},
		{MethodName: "CreateEntry", Handler: unaryHandler(MethodCreateEntry, JournalServer.CreateEntry)},
		{MethodName: "UpdateEntry", Handler: unaryHandler(MethodUpdateEntry, JournalServer.UpdateEntry)},
		{MethodName: "DeleteEntry", Handler: unaryHandler(MethodDeleteEntry, JournalServer.DeleteEntry)},
		{MethodName: "GetEntry", Handler: unaryHandler(MethodGetEntry, JournalServer.GetEntry)},
		{MethodName: "ExportEntries", Handler: unaryHandler(MethodExportEntries, JournalServer.ExportEntries)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEntries",
			Handler:       watchEntriesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "journal/v1/journal.proto",
}

// JournalClient is the client API for journal.v1.Journal.
type JournalClient interface {
	SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RefreshToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	CreateEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	DeleteEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ExportEntries(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchEntries(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (Journal_WatchEntriesClient, error)
}

type journalClient struct {
	cc grpc.ClientConnInterface
}

func NewJournalClient(cc grpc.ClientConnInterface) JournalClient {
	return &journalClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalClient) SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *journalClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *journalClient) RefreshToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *journalClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodPing, in, opts)
}

func (c *journalClient) CreateEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodCreateEntry, in, opts)
}

func (c *journalClient) UpdateEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodUpdateEntry, in, opts)
}

func (c *journalClient) DeleteEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodDeleteEntry, in, opts)
}

func (c *journalClient) GetEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodGetEntry, in, opts)
}

func (c *journalClient) ExportEntries(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodExportEntries, in, opts)
}

func (c *journalClient) WatchEntries(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (Journal_WatchEntriesClient, error) {
	stream, err := c.cc.NewStream(ctx, &Journal_ServiceDesc.Streams[0], MethodWatchEntries, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
