package handler

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dtroode/gophfriends-server/internal/api/grpc/friendsv1"
	"github.com/dtroode/gophfriends-server/internal/mocks"
	"github.com/dtroode/gophfriends-server/internal/model"
	"github.com/dtroode/gophfriends-server/internal/testutil"
)

type friendsDeps struct {
	friends *mocks.FriendService
	recs    *mocks.RecommendationService
	ctxMgr  *mocks.ContextManager
}

func newFriendsHandler(t *testing.T) (*Friends, friendsDeps) {
	t.Helper()

	deps := friendsDeps{
		friends: mocks.NewFriendService(t),
		recs:    mocks.NewRecommendationService(t),
		ctxMgr:  mocks.NewContextManager(t),
	}
	return NewFriends(deps.friends, deps.recs, deps.ctxMgr, testutil.MakeNoopLogger()), deps
}

func assertCode(t *testing.T, err error, want codes.Code) {
	t.Helper()

	st, ok := status.FromError(err)
	require.True(t, ok, "not a status error: %v", err)
	assert.Equal(t, want, st.Code())
}

func TestFriends_Mutations(t *testing.T) {
	t.Parallel()

	userID, otherID := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		method  string
		call    func(h *Friends, ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
		svcErr  error
		wantErr codes.Code
	}{
		{
			name:   "send",
			method: "SendFriendRequest",
			call:   (*Friends).SendFriendRequest,
		},
		{
			name:    "send twice",
			method:  "SendFriendRequest",
			call:    (*Friends).SendFriendRequest,
			svcErr:  model.ErrAlreadyRequested,
			wantErr: codes.AlreadyExists,
		},
		{
			name:   "accept",
			method: "AcceptFriendRequest",
			call:   (*Friends).AcceptFriendRequest,
		},
		{
			name:    "accept without request",
			method:  "AcceptFriendRequest",
			call:    (*Friends).AcceptFriendRequest,
			svcErr:  model.ErrNoSuchRequest,
			wantErr: codes.FailedPrecondition,
		},
		{
			name:   "reject",
			method: "RejectFriendRequest",
			call:   (*Friends).RejectFriendRequest,
		},
		{
			name:   "unfriend",
			method: "Unfriend",
			call:   (*Friends).Unfriend,
		},
		{
			name:    "unfriend unknown user",
			method:  "Unfriend",
			call:    (*Friends).Unfriend,
			svcErr:  model.ErrNotFound,
			wantErr: codes.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, deps := newFriendsHandler(t)
			deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(userID, true).Once()
			deps.friends.On(tt.method, mock.Anything, userID, otherID).Return(tt.svcErr).Once()

			resp, err := tt.call(h, context.Background(), wrapperspb.String(otherID.String()))
			if tt.wantErr != codes.OK {
				assertCode(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, resp)
		})
	}
}

func TestFriends_InvalidArguments(t *testing.T) {
	t.Parallel()

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(uuid.New(), true).Once()

		_, err := h.SendFriendRequest(context.Background(), wrapperspb.String("bob"))
		assertCode(t, err, codes.InvalidArgument)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(uuid.New(), true).Once()

		_, err := h.Unfriend(context.Background(), nil)
		assertCode(t, err, codes.InvalidArgument)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(uuid.Nil, false).Once()

		_, err := h.ListFriends(context.Background(), &emptypb.Empty{})
		assertCode(t, err, codes.Unauthenticated)
	})
}

func TestFriends_Lists(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	users := []model.PublicUser{
		{ID: uuid.New(), Username: "alice"},
		{ID: uuid.New(), Username: "bob"},
	}
	want := []friendsv1.Entry{
		{ID: users[0].ID.String(), Username: "alice"},
		{ID: users[1].ID.String(), Username: "bob"},
	}

	t.Run("friends", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(userID, true).Once()
		deps.friends.On("ListFriends", mock.Anything, userID).Return(users, nil).Once()

		resp, err := h.ListFriends(context.Background(), &emptypb.Empty{})
		require.NoError(t, err)
		got, err := friendsv1.ParseList(resp)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("friend requests", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(userID, true).Once()
		deps.friends.On("ListPendingRequests", mock.Anything, userID).Return(users, nil).Once()

		resp, err := h.ListFriendRequests(context.Background(), &emptypb.Empty{})
		require.NoError(t, err)
		got, err := friendsv1.ParseList(resp)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("search", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(userID, true).Once()
		deps.friends.On("SearchUsers", mock.Anything, "a%").Return(users[:1], nil).Once()

		resp, err := h.SearchUsers(context.Background(), wrapperspb.String("a%"))
		require.NoError(t, err)
		got, err := friendsv1.ParseList(resp)
		require.NoError(t, err)
		assert.Equal(t, want[:1], got)
	})

	t.Run("unknown caller", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(userID, true).Once()
		deps.friends.On("ListFriends", mock.Anything, userID).Return(nil, model.ErrNotFound).Once()

		_, err := h.ListFriends(context.Background(), &emptypb.Empty{})
		assertCode(t, err, codes.NotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()

		h, deps := newFriendsHandler(t)
		deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(userID, true).Once()
		deps.friends.On("ListPendingRequests", mock.Anything, userID).Return(nil, model.ErrStorage).Once()

		_, err := h.ListFriendRequests(context.Background(), &emptypb.Empty{})
		assertCode(t, err, codes.Unavailable)
	})
}

func TestFriends_GetRecommendations(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	c1, c2 := uuid.New(), uuid.New()

	h, deps := newFriendsHandler(t)
	deps.ctxMgr.On("GetUserIDFromContext", mock.Anything).Return(userID, true).Once()
	deps.recs.On("GetRecommendations", mock.Anything, userID).Return([]model.Recommendation{
		{User: model.PublicUser{ID: c1, Username: "c1"}, MutualCount: 2},
		{User: model.PublicUser{ID: c2, Username: "c2"}},
	}, nil).Once()

	resp, err := h.GetRecommendations(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	got, err := friendsv1.ParseList(resp)
	require.NoError(t, err)
	assert.Equal(t, []friendsv1.Entry{
		{ID: c1.String(), Username: "c1", MutualCount: 2},
		{ID: c2.String(), Username: "c2", MutualCount: 0},
	}, got)
	assert.Contains(t, resp.Values[1].GetStructValue().GetFields(), "mutual_count")
}
