package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/model"
)

type snapshot struct {
	Users []snapshotUser `json:"users"`
}

type snapshotUser struct {
	ID              uuid.UUID   `json:"id"`
	Username        string      `json:"username"`
	Friends         []uuid.UUID `json:"friends"`
	PendingRequests []uuid.UUID `json:"pending_requests"`
}

// Load replaces the directory contents with the snapshot stored under key.
// A missing snapshot leaves the directory empty.
func (d *Directory) Load(ctx context.Context, storage model.Storage, key string) error {
	exists, err := storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check snapshot: %w", err)
	}
	if !exists {
		return nil
	}

	rc, err := storage.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to download snapshot: %w", err)
	}
	defer rc.Close()

	var snap snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	users := make(map[uuid.UUID]model.User, len(snap.Users))
	byName := make(map[string]uuid.UUID, len(snap.Users))
	for _, su := range snap.Users {
		users[su.ID] = model.User{
			ID:              su.ID,
			Username:        su.Username,
			Friends:         su.Friends,
			PendingRequests: su.PendingRequests,
		}
		byName[su.Username] = su.ID
	}

	d.mu.Lock()
	d.users = users
	d.byName = byName
	d.version++
	d.mu.Unlock()

	return nil
}

// Flush writes a consistent snapshot of the directory under key.
func (d *Directory) Flush(ctx context.Context, storage model.Storage, key string) error {
	users, err := d.All(ctx)
	if err != nil {
		return err
	}

	snap := snapshot{Users: make([]snapshotUser, len(users))}
	for i, u := range users {
		snap.Users[i] = snapshotUser{
			ID:              u.ID,
			Username:        u.Username,
			Friends:         u.Friends,
			PendingRequests: u.PendingRequests,
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := storage.Upload(ctx, key, &buf); err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	return nil
}
