package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/gophfriends-server/internal/model"
)

var _ model.Directory = (*DirectoryRepository)(nil)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DirectoryRepository struct {
	db *Connection
}

func NewDirectoryRepository(db *Connection) *DirectoryRepository {
	return &DirectoryRepository{
		db: db,
	}
}

func (r *DirectoryRepository) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	err := r.inTx(ctx, readOnly, func(tx pgx.Tx) error {
		var err error
		user, err = r.load(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (r *DirectoryRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := r.inTx(ctx, readOnly, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrNotFound
			}
			return storageErr("failed to get user by username", err)
		}

		user, err = r.load(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (r *DirectoryRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := r.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO users (id, username) VALUES ($1, $2)`, user.ID, user.Username)
		if err != nil {
			if pgCode(err) == pgUniqueViolation {
				return model.ErrUsernameTaken
			}
			return storageErr("failed to create user", err)
		}

		if err := r.writeRelations(ctx, tx, user); err != nil {
			return err
		}
		return bumpVersion(ctx, tx)
	})
	if err != nil {
		return model.User{}, err
	}

	return user.Clone(), nil
}

func (r *DirectoryRepository) Save(ctx context.Context, user model.User) error {
	return r.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		if err := r.write(ctx, tx, user); err != nil {
			return err
		}
		return bumpVersion(ctx, tx)
	})
}

func (r *DirectoryRepository) Search(ctx context.Context, pattern string) ([]model.PublicUser, error) {
	query := `SELECT id, username FROM users
			  WHERE username ILIKE '%' || $1 || '%' ESCAPE '\'
			  ORDER BY username`

	rows, err := r.db.Query(ctx, query, escapeLike(pattern))
	if err != nil {
		return nil, storageErr("failed to search users", err)
	}

	users, err := pgx.CollectRows(rows, scanPublicUser)
	if err != nil {
		return nil, storageErr("failed to search users", err)
	}

	return users, nil
}

func (r *DirectoryRepository) Resolve(ctx context.Context, ids []uuid.UUID) ([]model.PublicUser, error) {
	if len(ids) == 0 {
		return []model.PublicUser{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.db.Query(ctx, `SELECT id, username FROM users WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, storageErr("failed to resolve users", err)
	}

	found, err := pgx.CollectRows(rows, scanPublicUser)
	if err != nil {
		return nil, storageErr("failed to resolve users", err)
	}

	byID := make(map[uuid.UUID]model.PublicUser, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	users := make([]model.PublicUser, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}

	return users, nil
}

func (r *DirectoryRepository) All(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.inTx(ctx, readOnly, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, username FROM users ORDER BY id`)
		if err != nil {
			return storageErr("failed to list users", err)
		}
		public, err := pgx.CollectRows(rows, scanPublicUser)
		if err != nil {
			return storageErr("failed to list users", err)
		}

		friends, err := collectEdges(ctx, tx, `SELECT user_id, friend_id FROM friendships ORDER BY user_id, position`)
		if err != nil {
			return err
		}
		pending, err := collectEdges(ctx, tx, `SELECT target_id, requester_id FROM friend_requests ORDER BY target_id, position`)
		if err != nil {
			return err
		}

		users = make([]model.User, len(public))
		for i, p := range public {
			users[i] = model.User{
				ID:              p.ID,
				Username:        p.Username,
				Friends:         friends[p.ID],
				PendingRequests: pending[p.ID],
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *DirectoryRepository) Update(ctx context.Context, ids []uuid.UUID, fn func(users map[uuid.UUID]*model.User) error) error {
	locked := lockOrder(ids)

	return r.inTx(ctx, readWrite, func(tx pgx.Tx) error {
		originals := make(map[uuid.UUID]model.User, len(locked))
		users := make(map[uuid.UUID]*model.User, len(locked))
		for _, id := range locked {
			u, err := r.load(ctx, tx, id, true)
			if err != nil {
				return err
			}
			originals[id] = u
			c := u.Clone()
			users[id] = &c
		}

		if err := fn(users); err != nil {
			return err
		}

		changed := false
		for _, id := range locked {
			if users[id].Equal(originals[id]) {
				continue
			}
			if err := r.writeRelations(ctx, tx, *users[id]); err != nil {
				return err
			}
			changed = true
		}
		if !changed {
			return nil
		}
		return bumpVersion(ctx, tx)
	})
}

func (r *DirectoryRepository) Version(ctx context.Context) (int64, error) {
	var version int64
	err := r.db.QueryRow(ctx, `SELECT version FROM graph_version`).Scan(&version)
	if err != nil {
		return 0, storageErr("failed to read graph version", err)
	}

	return version, nil
}

func (r *DirectoryRepository) load(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (model.User, error) {
	query := `SELECT id, username FROM users WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var user model.User
	err := q.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, storageErr("failed to get user by id", err)
	}

	user.Friends, err = collectIDs(ctx, q, `SELECT friend_id FROM friendships WHERE user_id = $1 ORDER BY position`, id)
	if err != nil {
		return model.User{}, err
	}
	user.PendingRequests, err = collectIDs(ctx, q, `SELECT requester_id FROM friend_requests WHERE target_id = $1 ORDER BY position`, id)
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

// write replaces the full record. The row update takes the row lock before
// the relation rows are rewritten.
func (r *DirectoryRepository) write(ctx context.Context, tx pgx.Tx, user model.User) error {
	cmd, err := tx.Exec(ctx, `UPDATE users SET username = $2 WHERE id = $1`, user.ID, user.Username)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return model.ErrUsernameTaken
		}
		return storageErr("failed to update user", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return r.writeRelations(ctx, tx, user)
}

func (r *DirectoryRepository) writeRelations(ctx context.Context, tx pgx.Tx, user model.User) error {
	if _, err := tx.Exec(ctx, `DELETE FROM friendships WHERE user_id = $1`, user.ID); err != nil {
		return storageErr("failed to clear friends", err)
	}
	for i, friendID := range user.Friends {
		_, err := tx.Exec(ctx,
			`INSERT INTO friendships (user_id, friend_id, position) VALUES ($1, $2, $3)`,
			user.ID, friendID, i)
		if err != nil {
			return relationErr("failed to insert friend", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM friend_requests WHERE target_id = $1`, user.ID); err != nil {
		return storageErr("failed to clear friend requests", err)
	}
	for i, requesterID := range user.PendingRequests {
		_, err := tx.Exec(ctx,
			`INSERT INTO friend_requests (target_id, requester_id, position) VALUES ($1, $2, $3)`,
			user.ID, requesterID, i)
		if err != nil {
			return relationErr("failed to insert friend request", err)
		}
	}

	return nil
}

// bumpVersion advances the graph version inside tx. The row is locked after
// any user rows, so writers keep a consistent lock order.
func bumpVersion(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `UPDATE graph_version SET version = version + 1`); err != nil {
		return storageErr("failed to bump graph version", err)
	}
	return nil
}

type txMode int

const (
	readWrite txMode = iota
	readOnly
)

// inTx runs fn in a transaction. Errors returned by fn pass through
// untouched; failures to begin or commit are storage failures.
func (r *DirectoryRepository) inTx(ctx context.Context, mode txMode, fn func(tx pgx.Tx) error) error {
	opts := pgx.TxOptions{}
	if mode == readOnly {
		opts = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	}

	var fnErr error
	err := pgx.BeginTxFunc(ctx, r.db, opts, func(tx pgx.Tx) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return storageErr("transaction failed", err)
	}

	return err
}

func collectIDs(ctx context.Context, q querier, query string, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, storageErr("failed to query relations", err)
	}

	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var v uuid.UUID
		err := row.Scan(&v)
		return v, err
	})
	if err != nil {
		return nil, storageErr("failed to scan relations", err)
	}

	return ids, nil
}

func collectEdges(ctx context.Context, q querier, query string) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, storageErr("failed to query relations", err)
	}
	defer rows.Close()

	edges := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var from, to uuid.UUID
		if err := rows.Scan(&from, &to); err != nil {
			return nil, storageErr("failed to scan relations", err)
		}
		edges[from] = append(edges[from], to)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to scan relations", err)
	}

	return edges, nil
}

func scanPublicUser(row pgx.CollectableRow) (model.PublicUser, error) {
	var u model.PublicUser
	err := row.Scan(&u.ID, &u.Username)
	return u, err
}

// lockOrder deduplicates ids and sorts them so concurrent updates acquire
// row locks in the same order.
func lockOrder(ids []uuid.UUID) []uuid.UUID {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(sorted)
}

func escapeLike(pattern string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(pattern)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func relationErr(msg string, err error) error {
	if pgCode(err) == pgForeignKeyViolation {
		return model.ErrNotFound
	}
	return storageErr(msg, err)
}

func storageErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, model.ErrStorage, err)
}
