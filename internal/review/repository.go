package review

import (
	"context"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	ListByLesson(ctx context.Context, lessonSeq int64) ([]View, error)
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

func (r *repository) Create(ctx context.Context, review *Review) (*Review, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(review).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "lesson_reviews", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return review, nil
}

func (r *repository) ListByLesson(ctx context.Context, lessonSeq int64) ([]View, error) {
	start := time.Now()
	views := make([]View, 0)
	err := r.db.NewSelect().
		TableExpr("lesson_reviews AS lr").
		Join("JOIN applied_lessons AS al ON al.apply_seq = lr.apply_seq").
		Join("JOIN users AS u ON u.user_id = al.tutee_id").
		ColumnExpr("lr.apply_seq, al.lesson_seq, al.tutee_id, u.nickname, lr.star, lr.review, lr.created_at").
		Where("al.lesson_seq = ?", lessonSeq).
		Order("lr.created_at DESC").
		Scan(ctx, &views)

	r.metrics.Database.RecordQuery(ctx, "select", "lesson_reviews", time.Since(start), err)

	return views, err
}
