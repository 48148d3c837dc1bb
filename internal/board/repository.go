package board

import (
	"context"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreatePost(ctx context.Context, post *Board) (*Board, error)
	CreateReply(ctx context.Context, reply *Reply) (*Reply, error)
	Recommend(ctx context.Context, postSeq int64, userID string) (*Recommend, error)
	CountRecommends(ctx context.Context, postSeq int64) (int, error)
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

func (r *repository) CreatePost(ctx context.Context, post *Board) (*Board, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(post).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "boards", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return post, nil
}

func (r *repository) CreateReply(ctx context.Context, reply *Reply) (*Reply, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(reply).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "board_reps", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return reply, nil
}

// Recommend records an upvote. A second vote by the same user is store.ErrConflict.
func (r *repository) Recommend(ctx context.Context, postSeq int64, userID string) (*Recommend, error) {
	rec := &Recommend{PostSeq: postSeq, UserID: userID}

	start := time.Now()
	_, err := r.db.NewInsert().Model(rec).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "recommends", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return rec, nil
}

func (r *repository) CountRecommends(ctx context.Context, postSeq int64) (int, error) {
	start := time.Now()
	n, err := r.db.NewSelect().Model((*Recommend)(nil)).Where("post_seq = ?", postSeq).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "recommends", time.Since(start), err)

	return n, err
}
