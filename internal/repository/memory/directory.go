package memory

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/model"
)

var _ model.Directory = (*Directory)(nil)

// Directory keeps user records in process memory. Multi-record updates take
// per-record locks in ascending id order; the map itself is guarded by mu so
// readers always observe whole updates.
type Directory struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]model.User
	byName map[string]uuid.UUID
	// version is seeded from the clock so a restarted process never reuses
	// versions an external cache may still hold entries for.
	version int64

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

func NewDirectory() *Directory {
	return &Directory{
		users:   make(map[uuid.UUID]model.User),
		byName:  make(map[string]uuid.UUID),
		version: time.Now().UnixNano(),
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (d *Directory) Get(_ context.Context, id uuid.UUID) (model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u.Clone(), nil
}

func (d *Directory) FindByUsername(_ context.Context, username string) (model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byName[username]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return d.users[id].Clone(), nil
}

func (d *Directory) Create(_ context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byName[user.Username]; ok {
		return model.User{}, model.ErrUsernameTaken
	}
	if _, ok := d.users[user.ID]; ok {
		return model.User{}, model.ErrUsernameTaken
	}
	if err := d.checkRefs(user); err != nil {
		return model.User{}, err
	}

	d.users[user.ID] = user.Clone()
	d.byName[user.Username] = user.ID
	d.version++
	return user.Clone(), nil
}

func (d *Directory) Save(_ context.Context, user model.User) error {
	unlock := d.lockRecords([]uuid.UUID{user.ID})
	defer unlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.validate(user); err != nil {
		return err
	}
	d.put(user)
	d.version++
	return nil
}

func (d *Directory) Search(_ context.Context, pattern string) ([]model.PublicUser, error) {
	needle := strings.ToLower(pattern)

	d.mu.RLock()
	found := make([]model.PublicUser, 0)
	for _, u := range d.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			found = append(found, u.Public())
		}
	}
	d.mu.RUnlock()

	slices.SortFunc(found, func(a, b model.PublicUser) int {
		return strings.Compare(a.Username, b.Username)
	})
	return found, nil
}

func (d *Directory) Resolve(_ context.Context, ids []uuid.UUID) ([]model.PublicUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]model.PublicUser, 0, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			users = append(users, u.Public())
		}
	}
	return users, nil
}

func (d *Directory) All(_ context.Context) ([]model.User, error) {
	d.mu.RLock()
	users := make([]model.User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, u.Clone())
	}
	d.mu.RUnlock()

	slices.SortFunc(users, func(a, b model.User) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return users, nil
}

func (d *Directory) Update(_ context.Context, ids []uuid.UUID, fn func(users map[uuid.UUID]*model.User) error) error {
	unlock := d.lockRecords(ids)
	defer unlock()

	d.mu.RLock()
	originals := make(map[uuid.UUID]model.User, len(ids))
	users := make(map[uuid.UUID]*model.User, len(ids))
	for _, id := range ids {
		u, ok := d.users[id]
		if !ok {
			d.mu.RUnlock()
			return model.ErrNotFound
		}
		originals[id] = u
		c := u.Clone()
		users[id] = &c
	}
	d.mu.RUnlock()

	if err := fn(users); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, u := range users {
		if err := d.validate(*u); err != nil {
			return err
		}
	}

	changed := false
	for id, u := range users {
		if u.Equal(originals[id]) {
			continue
		}
		d.put(*u)
		changed = true
	}
	if changed {
		d.version++
	}
	return nil
}

func (d *Directory) Version(_ context.Context) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.version, nil
}

func (d *Directory) validate(user model.User) error {
	old, ok := d.users[user.ID]
	if !ok {
		return model.ErrNotFound
	}
	if user.Username != old.Username {
		if _, taken := d.byName[user.Username]; taken {
			return model.ErrUsernameTaken
		}
	}
	return d.checkRefs(user)
}

// put replaces a validated record. Callers hold mu for writing.
func (d *Directory) put(user model.User) {
	old := d.users[user.ID]
	if user.Username != old.Username {
		delete(d.byName, old.Username)
		d.byName[user.Username] = user.ID
	}
	d.users[user.ID] = user.Clone()
}

// checkRefs rejects relations pointing at unknown users, mirroring the
// foreign keys of the SQL schema.
func (d *Directory) checkRefs(user model.User) error {
	for _, id := range user.Friends {
		if _, ok := d.users[id]; !ok {
			return model.ErrNotFound
		}
	}
	for _, id := range user.PendingRequests {
		if _, ok := d.users[id]; !ok {
			return model.ErrNotFound
		}
	}
	return nil
}

// lockRecords acquires the per-record mutexes of ids in ascending id order and
// returns the function releasing them.
func (d *Directory) lockRecords(ids []uuid.UUID) func() {
	ordered := slices.Clone(ids)
	slices.SortFunc(ordered, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	ordered = slices.Compact(ordered)

	d.locksMu.Lock()
	mutexes := make([]*sync.Mutex, len(ordered))
	for i, id := range ordered {
		m, ok := d.locks[id]
		if !ok {
			m = &sync.Mutex{}
			d.locks[id] = m
		}
		mutexes[i] = m
	}
	d.locksMu.Unlock()

	for _, m := range mutexes {
		m.Lock()
	}

	return func() {
		for i := len(mutexes) - 1; i >= 0; i-- {
			mutexes[i].Unlock()
		}
	}
}
