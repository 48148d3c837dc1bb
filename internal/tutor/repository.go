package tutor

import (
	"context"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, tutor *Tutor) (*Tutor, error)
	GetByUserID(ctx context.Context, userID string) (*Tutor, error)
	ListPending(ctx context.Context) ([]Application, error)
	Approve(ctx context.Context, userID string) error
	DeletePending(ctx context.Context, userID string) error
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

func (r *repository) Create(ctx context.Context, tutor *Tutor) (*Tutor, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(tutor).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "tutors", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return tutor, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID string) (*Tutor, error) {
	start := time.Now()
	tutor := new(Tutor)
	err := r.db.NewSelect().Model(tutor).Where("user_id = ?", userID).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "tutors", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return tutor, nil
}

func (r *repository) ListPending(ctx context.Context) ([]Application, error) {
	start := time.Now()
	apps := make([]Application, 0)
	err := r.db.NewSelect().
		TableExpr("tutors AS t").
		Join("JOIN users AS u ON u.user_id = t.user_id").
		ColumnExpr("t.user_id, u.name, u.nickname, u.email").
		ColumnExpr("COALESCE(t.introduction, '') AS introduction, COALESCE(t.career, '') AS career, t.created_at").
		Where("t.approved = false").
		Order("t.created_at ASC").
		Scan(ctx, &apps)

	r.metrics.Database.RecordQuery(ctx, "select", "tutors", time.Since(start), err)

	return apps, err
}

// Approve flips a pending application and promotes a tutee to RoleTutor
// in one transaction. Admin accounts keep their role.
// A missing or already approved application, or one whose account was
// withdrawn, yields store.ErrNotFound and changes nothing.
func (r *repository) Approve(ctx context.Context, userID string) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*Tutor)(nil)).
			Set("approved = true").
			Set("approved_at = ?", time.Now().UTC()).
			Where("user_id = ?", userID).
			Where("approved = false").
			Where("EXISTS (SELECT 1 FROM users AS u WHERE u.user_id = ? AND u.role <> ?)", userID, user.RoleWithdrawn).
			Exec(ctx)
		if err != nil {
			return err
		}
		if err := store.RequireAffected(result); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*user.User)(nil)).
			Set("role = ?", user.RoleTutor).
			Where("user_id = ?", userID).
			Where("role = ?", user.RoleTutee).
			Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "update", "tutors", time.Since(start), err)
	r.metrics.Database.RecordTx(ctx, "approve_tutor", err)

	return err
}

// DeletePending removes a pending application. Approved tutors are not touched.
func (r *repository) DeletePending(ctx context.Context, userID string) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Tutor)(nil)).
		Where("user_id = ?", userID).
		Where("approved = false").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "tutors", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}
