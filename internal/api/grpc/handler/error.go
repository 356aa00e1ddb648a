package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophfriends-server/internal/model"
)

func handleError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, model.ErrAlreadyRequested):
		return status.Error(codes.AlreadyExists, "friend request already sent")
	case errors.Is(err, model.ErrNoSuchRequest):
		return status.Error(codes.FailedPrecondition, "no such friend request")
	case errors.Is(err, model.ErrSelfRequest):
		return status.Error(codes.InvalidArgument, "cannot send a friend request to yourself")
	case errors.Is(err, model.ErrStorage):
		return status.Error(codes.Unavailable, "storage unavailable")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
