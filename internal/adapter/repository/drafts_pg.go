package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"resume-builder/internal/draft"
)

// PGDrafts stores slots in the resume_drafts table created by the
// migrations. Calls are synchronous and bounded by timeout.
type PGDrafts struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPGDrafts(pool *pgxpool.Pool, timeout time.Duration) *PGDrafts {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PGDrafts{pool: pool, timeout: timeout}
}

func (r *PGDrafts) Backend(namespace string) draft.Backend {
	return &pgBackend{r: r, ns: namespace}
}

type pgBackend struct {
	r  *PGDrafts
	ns string
}

func (b *pgBackend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.r.timeout)
}

func (b *pgBackend) Get(key draft.Key) ([]byte, error) {
	if b.r.pool == nil {
		return nil, draft.ErrNotFound
	}
	ctx, cancel := b.ctx()
	defer cancel()

	var v string
	err := b.r.pool.QueryRow(ctx, `SELECT value::text FROM resume_drafts WHERE namespace = $1 AND slot = $2`, b.ns, string(key)).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (b *pgBackend) Put(key draft.Key, value []byte) error {
	if b.r.pool == nil {
		return nil
	}
	ctx, cancel := b.ctx()
	defer cancel()

	_, err := b.r.pool.Exec(ctx, `INSERT INTO resume_drafts (namespace, slot, value, updated_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (namespace, slot) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		b.ns, string(key), string(value), time.Now())
	return err
}

func (b *pgBackend) Delete(keys ...draft.Key) error {
	if b.r.pool == nil || len(keys) == 0 {
		return nil
	}
	ctx, cancel := b.ctx()
	defer cancel()

	slots := make([]string, 0, len(keys))
	for _, k := range keys {
		slots = append(slots, string(k))
	}
	_, err := b.r.pool.Exec(ctx, `DELETE FROM resume_drafts WHERE namespace = $1 AND slot = ANY($2)`, b.ns, slots)
	return err
}
