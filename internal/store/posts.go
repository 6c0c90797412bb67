package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/foodrescue/internal/db"
	"github.com/erazemk/foodrescue/internal/expiry"
	"github.com/erazemk/foodrescue/internal/model"
)

// Options configure a PostStore.
type Options struct {
	// Location is the single timezone every timestamp is normalized to.
	// Defaults to time.Local.
	Location *time.Location
	// Clock defaults to the wall clock.
	Clock expiry.Clock
}

// PostStore is the record store for donation posts.
//
// It caches the decoded stored records after the first load. Every write goes
// through saveLocked, which drops the cache, so the next load reflects it.
// The mutex serializes whole read-check-write transactions within this
// process. Two processes sharing one database file are not isolated from each
// other: the last SaveAll wins.
type PostStore struct {
	db    *sql.DB
	loc   *time.Location
	clock expiry.Clock

	mu     sync.Mutex
	cached []model.Post
}

// NewPostStore returns a store handle over an open database with the schema applied.
func NewPostStore(database *sql.DB, opts Options) *PostStore {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = expiry.SystemClock
	}
	return &PostStore{db: database, loc: opts.Location, clock: opts.Clock}
}

// Location returns the store's timezone basis.
func (s *PostStore) Location() *time.Location { return s.loc }

// Now returns the store clock's current time in the store's location.
func (s *PostStore) Now() time.Time { return s.clock().In(s.loc) }

// LoadAll returns every post in insertion order with the expiry policy applied
// to its status. Nothing is written.
func (s *PostStore) LoadAll(ctx context.Context) ([]model.Post, error) {
	stored, err := s.LoadStored(ctx)
	if err != nil {
		return nil, err
	}
	return expiry.Apply(stored, s.Now()), nil
}

// LoadStored returns every post exactly as persisted, in insertion order.
func (s *PostStore) LoadStored(ctx context.Context) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return clonePosts(posts), nil
}

// SaveAll replaces the stored posts in a single transaction.
func (s *PostStore) SaveAll(ctx context.Context, posts []model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, posts)
}

// Update runs fn on the freshest stored posts and saves what it returns, all
// under the store lock. If fn returns an error nothing is written and the
// error is returned unchanged.
func (s *PostStore) Update(ctx context.Context, fn func(posts []model.Post) ([]model.Post, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	next, err := fn(clonePosts(current))
	if err != nil {
		return err
	}
	return s.saveLocked(ctx, next)
}

// Append adds one post at the end.
func (s *PostStore) Append(ctx context.Context, p model.Post) error {
	return s.Update(ctx, func(posts []model.Post) ([]model.Post, error) {
		return append(posts, p), nil
	})
}

func (s *PostStore) loadLocked(ctx context.Context) ([]model.Post, error) {
	if s.cached != nil {
		return s.cached, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(db.PostColumns, ", ")+` FROM posts ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		raw, err := scanRaw(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, decodePost(raw, s.loc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}

	s.cached = posts
	return posts, nil
}

func (s *PostStore) saveLocked(ctx context.Context, posts []model.Post) error {
	// Whatever happens below, the next load goes to the database.
	s.cached = nil

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("clearing posts: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(db.PostColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO posts (`+strings.Join(db.PostColumns, ", ")+`) VALUES (`+placeholders+`)`,
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		if _, err := stmt.ExecContext(ctx, encodePost(p, s.loc)...); err != nil {
			return fmt.Errorf("writing post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing posts: %w", err)
	}
	return nil
}

// scanRaw reads one row of db.PostColumns as strings.
func scanRaw(rows *sql.Rows) ([]string, error) {
	raw := make([]sql.NullString, len(db.PostColumns))
	dest := make([]any, len(raw))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = v.String
	}
	return out, nil
}
