package model

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// Directory is the sole authority over user records.
type Directory interface {
	Get(ctx context.Context, id uuid.UUID) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Save(ctx context.Context, user User) error
	Search(ctx context.Context, pattern string) ([]PublicUser, error)
	Resolve(ctx context.Context, ids []uuid.UUID) ([]PublicUser, error)
	All(ctx context.Context) ([]User, error)
	// Update loads the given records under lock, in ascending id order, and
	// passes copies to fn. Records changed by fn are persisted together;
	// nothing is written if fn returns an error.
	Update(ctx context.Context, ids []uuid.UUID, fn func(users map[uuid.UUID]*User) error) error
	// Version returns the graph version. It advances in the same commit as
	// every write that adds a user or changes a record.
	Version(ctx context.Context) (int64, error)
}

// User is a directory record. Friends is a set; PendingRequests keeps
// arrival order.
type User struct {
	ID              uuid.UUID
	Username        string
	Friends         []uuid.UUID
	PendingRequests []uuid.UUID
}

// PublicUser is the projection of a user exposed to callers.
type PublicUser struct {
	ID       uuid.UUID
	Username string
}

// Recommendation is a ranked friend suggestion.
type Recommendation struct {
	User        PublicUser
	MutualCount int
}

// Public returns the public projection of u.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	u.Friends = slices.Clone(u.Friends)
	u.PendingRequests = slices.Clone(u.PendingRequests)
	return u
}

func (u User) HasFriend(id uuid.UUID) bool {
	return slices.Contains(u.Friends, id)
}

func (u User) HasPendingFrom(id uuid.UUID) bool {
	return slices.Contains(u.PendingRequests, id)
}

// AddFriend inserts id into the friend set. It reports whether the set changed.
func (u *User) AddFriend(id uuid.UUID) bool {
	if u.HasFriend(id) {
		return false
	}
	u.Friends = append(u.Friends, id)
	return true
}

// RemoveFriend filters id out of the friend set.
func (u *User) RemoveFriend(id uuid.UUID) bool {
	n := len(u.Friends)
	u.Friends = slices.DeleteFunc(u.Friends, func(f uuid.UUID) bool { return f == id })
	return len(u.Friends) != n
}

// RemovePending filters id out of the pending list.
func (u *User) RemovePending(id uuid.UUID) bool {
	n := len(u.PendingRequests)
	u.PendingRequests = slices.DeleteFunc(u.PendingRequests, func(p uuid.UUID) bool { return p == id })
	return len(u.PendingRequests) != n
}

// Equal reports whether two records hold the same state.
func (u User) Equal(o User) bool {
	return u.ID == o.ID &&
		u.Username == o.Username &&
		slices.Equal(u.Friends, o.Friends) &&
		slices.Equal(u.PendingRequests, o.PendingRequests)
}
