package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gophfriends-server/internal/model"
)

var _ model.Directory = (*Directory)(nil)

type Directory struct {
	mock.Mock
}

func NewDirectory(t testingT) *Directory {
	m := &Directory{}
	register(&m.Mock, t)
	return m
}

func (m *Directory) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *Directory) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *Directory) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *Directory) Save(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Directory) Search(ctx context.Context, pattern string) ([]model.PublicUser, error) {
	args := m.Called(ctx, pattern)
	users, _ := args.Get(0).([]model.PublicUser)
	return users, args.Error(1)
}

func (m *Directory) Resolve(ctx context.Context, ids []uuid.UUID) ([]model.PublicUser, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]model.PublicUser)
	return users, args.Error(1)
}

func (m *Directory) All(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *Directory) Update(ctx context.Context, ids []uuid.UUID, fn func(users map[uuid.UUID]*model.User) error) error {
	args := m.Called(ctx, ids, fn)
	return args.Error(0)
}

func (m *Directory) Version(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
