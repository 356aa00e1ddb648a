// Package friendsv1 describes the gophfriends.v1.Friends gRPC service. Its
// messages are protobuf well-known types, so no generated code is needed.
package friendsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "gophfriends.v1.Friends"

const (
	SearchUsersFullMethodName         = "/" + ServiceName + "/SearchUsers"
	SendFriendRequestFullMethodName   = "/" + ServiceName + "/SendFriendRequest"
	AcceptFriendRequestFullMethodName = "/" + ServiceName + "/AcceptFriendRequest"
	RejectFriendRequestFullMethodName = "/" + ServiceName + "/RejectFriendRequest"
	UnfriendFullMethodName            = "/" + ServiceName + "/Unfriend"
	ListFriendsFullMethodName         = "/" + ServiceName + "/ListFriends"
	ListFriendRequestsFullMethodName  = "/" + ServiceName + "/ListFriendRequests"
	GetRecommendationsFullMethodName  = "/" + ServiceName + "/GetRecommendations"
)

// FriendsServer is implemented by the transport handler. The caller is
// always the authenticated user; the StringValue argument names the other
// user, or the search pattern for SearchUsers.
type FriendsServer interface {
	SearchUsers(ctx context.Context, pattern *wrapperspb.StringValue) (*structpb.ListValue, error)
	SendFriendRequest(ctx context.Context, targetID *wrapperspb.StringValue) (*emptypb.Empty, error)
	AcceptFriendRequest(ctx context.Context, requesterID *wrapperspb.StringValue) (*emptypb.Empty, error)
	RejectFriendRequest(ctx context.Context, requesterID *wrapperspb.StringValue) (*emptypb.Empty, error)
	Unfriend(ctx context.Context, friendID *wrapperspb.StringValue) (*emptypb.Empty, error)
	ListFriends(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
	ListFriendRequests(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
	GetRecommendations(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
}

func RegisterFriendsServer(s grpc.ServiceRegistrar, srv FriendsServer) {
	s.RegisterService(&Friends_ServiceDesc, srv)
}

func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }

// Friends_ServiceDesc is the grpc.ServiceDesc for the Friends service.
var Friends_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FriendsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SearchUsers", newString, FriendsServer.SearchUsers),
		unary("SendFriendRequest", newString, FriendsServer.SendFriendRequest),
		unary("AcceptFriendRequest", newString, FriendsServer.AcceptFriendRequest),
		unary("RejectFriendRequest", newString, FriendsServer.RejectFriendRequest),
		unary("Unfriend", newString, FriendsServer.Unfriend),
		unary("ListFriends", newEmpty, FriendsServer.ListFriends),
		unary("ListFriendRequests", newEmpty, FriendsServer.ListFriendRequests),
		unary("GetRecommendations", newEmpty, FriendsServer.GetRecommendations),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophfriends/v1/friends.proto",
}

func unary[Req, Resp proto.Message](
	name string,
	newReq func() Req,
	call func(FriendsServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FriendsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FriendsServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FriendsClient calls the Friends service over a client connection.
type FriendsClient struct {
	cc grpc.ClientConnInterface
}

func NewFriendsClient(cc grpc.ClientConnInterface) *FriendsClient {
	return &FriendsClient{cc: cc}
}

func (c *FriendsClient) SearchUsers(ctx context.Context, pattern string, opts ...grpc.CallOption) ([]Entry, error) {
	return c.list(ctx, SearchUsersFullMethodName, wrapperspb.String(pattern), opts...)
}

func (c *FriendsClient) SendFriendRequest(ctx context.Context, targetID string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, SendFriendRequestFullMethodName, wrapperspb.String(targetID), new(emptypb.Empty), opts...)
}

func (c *FriendsClient) AcceptFriendRequest(ctx context.Context, requesterID string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, AcceptFriendRequestFullMethodName, wrapperspb.String(requesterID), new(emptypb.Empty), opts...)
}

func (c *FriendsClient) RejectFriendRequest(ctx context.Context, requesterID string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, RejectFriendRequestFullMethodName, wrapperspb.String(requesterID), new(emptypb.Empty), opts...)
}

func (c *FriendsClient) Unfriend(ctx context.Context, friendID string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, UnfriendFullMethodName, wrapperspb.String(friendID), new(emptypb.Empty), opts...)
}

func (c *FriendsClient) ListFriends(ctx context.Context, opts ...grpc.CallOption) ([]Entry, error) {
	return c.list(ctx, ListFriendsFullMethodName, new(emptypb.Empty), opts...)
}

func (c *FriendsClient) ListFriendRequests(ctx context.Context, opts ...grpc.CallOption) ([]Entry, error) {
	return c.list(ctx, ListFriendRequestsFullMethodName, new(emptypb.Empty), opts...)
}

func (c *FriendsClient) GetRecommendations(ctx context.Context, opts ...grpc.CallOption) ([]Entry, error) {
	return c.list(ctx, GetRecommendationsFullMethodName, new(emptypb.Empty), opts...)
}

func (c *FriendsClient) list(ctx context.Context, method string, in proto.Message, opts ...grpc.CallOption) ([]Entry, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return ParseList(out)
}
