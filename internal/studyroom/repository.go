package studyroom

import (
	"context"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, room *Studyroom) (*Studyroom, error)
	GetBySeq(ctx context.Context, srSeq int64) (*Studyroom, error)
	Latest(ctx context.Context, limit int) ([]Studyroom, error)

	CreateFavorite(ctx context.Context, fav *Favorite) (*Favorite, error)
	GetFavorite(ctx context.Context, favSrSeq int64) (*Favorite, error)
	DeleteFavorite(ctx context.Context, favSrSeq int64) error

	CreateReservation(ctx context.Context, res *Reservation) (*Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]Reservation, error)
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

func (r *repository) Create(ctx context.Context, room *Studyroom) (*Studyroom, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(room).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "studyrooms", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return room, nil
}

func (r *repository) GetBySeq(ctx context.Context, srSeq int64) (*Studyroom, error) {
	start := time.Now()
	room := new(Studyroom)
	err := r.db.NewSelect().Model(room).Where("sr_seq = ?", srSeq).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "studyrooms", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return room, nil
}

func (r *repository) Latest(ctx context.Context, limit int) ([]Studyroom, error) {
	start := time.Now()
	rooms := make([]Studyroom, 0, limit)
	err := r.db.NewSelect().
		Model(&rooms).
		Order("created_at DESC", "sr_seq DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "studyrooms", time.Since(start), err)

	return rooms, err
}

func (r *repository) CreateFavorite(ctx context.Context, fav *Favorite) (*Favorite, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(fav).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "favorites_studyrooms", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return fav, nil
}

func (r *repository) GetFavorite(ctx context.Context, favSrSeq int64) (*Favorite, error) {
	start := time.Now()
	fav := new(Favorite)
	err := r.db.NewSelect().Model(fav).Where("fav_sr_seq = ?", favSrSeq).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "favorites_studyrooms", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return fav, nil
}

func (r *repository) DeleteFavorite(ctx context.Context, favSrSeq int64) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Favorite)(nil)).
		Where("fav_sr_seq = ?", favSrSeq).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "favorites_studyrooms", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}

func (r *repository) CreateReservation(ctx context.Context, res *Reservation) (*Reservation, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(res).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "reservations", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return res, nil
}

func (r *repository) ListReservationsByUser(ctx context.Context, userID string) ([]Reservation, error) {
	start := time.Now()
	reservations := make([]Reservation, 0)
	err := r.db.NewSelect().
		Model(&reservations).
		Where("user_id = ?", userID).
		Order("start_time ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	return reservations, err
}
