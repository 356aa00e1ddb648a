package router

import (
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpcctx "github.com/dtroode/gophfriends-server/internal/api/grpc/context"
	"github.com/dtroode/gophfriends-server/internal/api/grpc/friendsv1"
	"github.com/dtroode/gophfriends-server/internal/cache"
	"github.com/dtroode/gophfriends-server/internal/model"
	"github.com/dtroode/gophfriends-server/internal/repository/memory"
	"github.com/dtroode/gophfriends-server/internal/service"
	"github.com/dtroode/gophfriends-server/internal/testutil"
	"github.com/dtroode/gophfriends-server/internal/token"
)

const testSecret = "router-test-secret"

type testEnv struct {
	conn   *grpc.ClientConn
	client *friendsv1.FriendsClient
	dir    *memory.Directory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	dir := memory.NewDirectory()

	r := New(
		service.NewFriendship(dir, lg),
		service.NewRecommendation(dir, cache.Noop{}, lg),
		service.NewTokenService(token.NewJWT(testSecret)),
		grpcctx.NewManager(),
		lg,
	)
	s := r.Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{conn: conn, client: friendsv1.NewFriendsClient(conn), dir: dir}
}

// as creates a user and returns a context authenticated as them.
func (e *testEnv) as(t *testing.T, username string) (context.Context, uuid.UUID) {
	t.Helper()

	u, err := e.dir.Create(context.Background(), model.User{Username: username})
	require.NoError(t, err)

	access := testutil.AccessToken(t, testSecret, u.ID)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+access)
	return ctx, u.ID
}

func TestRouter_FriendRequestFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	aliceCtx, aliceID := env.as(t, "alice")
	bobCtx, bobID := env.as(t, "bob")

	require.NoError(t, env.client.SendFriendRequest(aliceCtx, bobID.String()))

	err := env.client.SendFriendRequest(aliceCtx, bobID.String())
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	pending, err := env.client.ListFriendRequests(bobCtx)
	require.NoError(t, err)
	assert.Equal(t, []friendsv1.Entry{{ID: aliceID.String(), Username: "alice"}}, pending)

	require.NoError(t, env.client.AcceptFriendRequest(bobCtx, aliceID.String()))

	friends, err := env.client.ListFriends(aliceCtx)
	require.NoError(t, err)
	assert.Equal(t, []friendsv1.Entry{{ID: bobID.String(), Username: "bob"}}, friends)

	pending, err = env.client.ListFriendRequests(bobCtx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, env.client.SendFriendRequest(aliceCtx, bobID.String()))
	require.NoError(t, env.client.RejectFriendRequest(bobCtx, aliceID.String()))

	err = env.client.RejectFriendRequest(bobCtx, aliceID.String())
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	require.NoError(t, env.client.Unfriend(bobCtx, aliceID.String()))
	require.NoError(t, env.client.Unfriend(bobCtx, aliceID.String()))

	friends, err = env.client.ListFriends(bobCtx)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestRouter_Recommendations(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	uCtx, uID := env.as(t, "u")
	xCtx, xID := env.as(t, "x")
	cCtx, cID := env.as(t, "c")

	require.NoError(t, env.client.SendFriendRequest(uCtx, xID.String()))
	require.NoError(t, env.client.AcceptFriendRequest(xCtx, uID.String()))
	require.NoError(t, env.client.SendFriendRequest(cCtx, xID.String()))
	require.NoError(t, env.client.AcceptFriendRequest(xCtx, cID.String()))

	recs, err := env.client.GetRecommendations(uCtx)
	require.NoError(t, err)
	assert.Equal(t, []friendsv1.Entry{{ID: cID.String(), Username: "c", MutualCount: 1}}, recs)
}

func TestRouter_SearchUsers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx, _ := env.as(t, "alice")
	_, malikID := env.as(t, "malik")
	env.as(t, "bob")

	found, err := env.client.SearchUsers(ctx, "LIK")
	require.NoError(t, err)
	assert.Equal(t, []friendsv1.Entry{{ID: malikID.String(), Username: "malik"}}, found)
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx, selfID := env.as(t, "alice")

	ghost := metadata.AppendToOutgoingContext(context.Background(), "authorization",
		"Bearer "+testutil.AccessToken(t, testSecret, uuid.New()))

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{
			name: "no token",
			call: func() error { _, err := env.client.ListFriends(context.Background()); return err },
			want: codes.Unauthenticated,
		},
		{
			name: "bad token",
			call: func() error {
				bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
				_, err := env.client.ListFriends(bad)
				return err
			},
			want: codes.Unauthenticated,
		},
		{
			name: "malformed id",
			call: func() error { return env.client.SendFriendRequest(ctx, "bob") },
			want: codes.InvalidArgument,
		},
		{
			name: "self request",
			call: func() error { return env.client.SendFriendRequest(ctx, selfID.String()) },
			want: codes.InvalidArgument,
		},
		{
			name: "unknown target",
			call: func() error { return env.client.SendFriendRequest(ctx, uuid.NewString()) },
			want: codes.NotFound,
		},
		{
			name: "token for deleted user",
			call: func() error { _, err := env.client.GetRecommendations(ghost); return err },
			want: codes.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, status.Code(tt.call()))
		})
	}
}

func TestRouter_HealthSkipsAuth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: friendsv1.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
