package host

import (
	"context"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, host *HostUser) (*HostUser, error)
	GetByID(ctx context.Context, hostID string) (*HostUser, error)
	ListPending(ctx context.Context) ([]HostUser, error)
	Approve(ctx context.Context, hostID string) error
	DeletePending(ctx context.Context, hostID string) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, host *HostUser) (*HostUser, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(host).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "host_users", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return host, nil
}

func (r *repository) GetByID(ctx context.Context, hostID string) (*HostUser, error) {
	start := time.Now()
	host := new(HostUser)
	err := r.db.NewSelect().Model(host).Where("host_id = ?", hostID).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "host_users", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return host, nil
}

func (r *repository) ListPending(ctx context.Context) ([]HostUser, error) {
	start := time.Now()
	hosts := make([]HostUser, 0)
	err := r.db.NewSelect().
		Model(&hosts).
		Where("ready = false").
		Order("created_at ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "host_users", time.Since(start), err)

	return hosts, err
}

func (r *repository) Approve(ctx context.Context, hostID string) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*HostUser)(nil)).
		Set("ready = true").
		Set("approved_at = ?", time.Now().UTC()).
		Where("host_id = ?", hostID).
		Where("ready = false").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "host_users", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}

func (r *repository) DeletePending(ctx context.Context, hostID string) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*HostUser)(nil)).
		Where("host_id = ?", hostID).
		Where("ready = false").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "host_users", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}
