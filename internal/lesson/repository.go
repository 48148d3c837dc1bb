package lesson

import (
	"context"
	"strings"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, lesson *Lesson) (*Lesson, error)
	GetBySeq(ctx context.Context, lessonSeq int64) (*Lesson, error)
	Search(ctx context.Context, word string) ([]Lesson, error)
	ListAll(ctx context.Context) ([]Lesson, error)
	Latest(ctx context.Context, limit int) ([]Lesson, error)
	TutorStats(ctx context.Context, lessonSeq int64, tutorID string) (*TutorStats, error)

	CreateApplication(ctx context.Context, app *Application) (*Application, error)
	GetApplication(ctx context.Context, applySeq int64) (*Application, error)
	ListApplicants(ctx context.Context, lessonSeq int64) ([]Applicant, error)
	ApproveApplication(ctx context.Context, lessonSeq int64, tuteeID string) error
	DeleteApplication(ctx context.Context, lessonSeq int64, tuteeID string) error

	CreateFavorite(ctx context.Context, fav *Favorite) (*Favorite, error)
	GetFavorite(ctx context.Context, favLesSeq int64) (*Favorite, error)
	DeleteFavorite(ctx context.Context, favLesSeq int64) error
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

func (r *repository) Create(ctx context.Context, lesson *Lesson) (*Lesson, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(lesson).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "lessons", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return lesson, nil
}

func (r *repository) GetBySeq(ctx context.Context, lessonSeq int64) (*Lesson, error) {
	start := time.Now()
	lesson := new(Lesson)
	err := r.db.NewSelect().Model(lesson).Where("lesson_seq = ?", lessonSeq).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "lessons", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return lesson, nil
}

// Search matches word anywhere in the lesson name, newest first.
// An empty word lists everything.
func (r *repository) Search(ctx context.Context, word string) ([]Lesson, error) {
	start := time.Now()
	lessons := make([]Lesson, 0)
	q := r.db.NewSelect().Model(&lessons).Order("created_at DESC", "lesson_seq DESC")
	if w := strings.TrimSpace(word); w != "" {
		q = q.Where("name ILIKE ?", "%"+store.EscapeLike(w)+"%")
	}
	err := q.Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "lessons", time.Since(start), err)

	return lessons, err
}

func (r *repository) ListAll(ctx context.Context) ([]Lesson, error) {
	return r.Search(ctx, "")
}

func (r *repository) Latest(ctx context.Context, limit int) ([]Lesson, error) {
	start := time.Now()
	lessons := make([]Lesson, 0, limit)
	err := r.db.NewSelect().
		Model(&lessons).
		Order("created_at DESC", "lesson_seq DESC").
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "lessons", time.Since(start), err)

	return lessons, err
}

// TutorStats summarises the reviews a tutor collected over all of their lessons.
func (r *repository) TutorStats(ctx context.Context, lessonSeq int64, tutorID string) (*TutorStats, error) {
	start := time.Now()
	stats := new(TutorStats)
	err := r.db.NewSelect().
		TableExpr("users AS u").
		ColumnExpr("u.nickname AS tutor_nickname").
		ColumnExpr(`(SELECT COUNT(*) FROM lesson_reviews AS lr
			JOIN applied_lessons AS al ON al.apply_seq = lr.apply_seq
			JOIN lessons AS l ON l.lesson_seq = al.lesson_seq
			WHERE l.tutor_id = u.user_id) AS tutor_review_count`).
		ColumnExpr(`(SELECT COALESCE(AVG(lr.star), 0)::float8 FROM lesson_reviews AS lr
			JOIN applied_lessons AS al ON al.apply_seq = lr.apply_seq
			JOIN lessons AS l ON l.lesson_seq = al.lesson_seq
			WHERE l.tutor_id = u.user_id) AS tutor_avg_star`).
		ColumnExpr(`(SELECT COUNT(*) FROM applied_lessons AS al
			WHERE al.lesson_seq = ? AND al.apply_ok = ?) AS approved_count`, lessonSeq, ApplyApproved).
		Where("u.user_id = ?", tutorID).
		Scan(ctx, stats)

	r.metrics.Database.RecordQuery(ctx, "select", "lesson_reviews", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return stats, nil
}

func (r *repository) CreateApplication(ctx context.Context, app *Application) (*Application, error) {
	app.ApplyOK = ApplyPending

	start := time.Now()
	_, err := r.db.NewInsert().Model(app).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "applied_lessons", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return app, nil
}

func (r *repository) GetApplication(ctx context.Context, applySeq int64) (*Application, error) {
	start := time.Now()
	app := new(Application)
	err := r.db.NewSelect().Model(app).Where("apply_seq = ?", applySeq).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "applied_lessons", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return app, nil
}

func (r *repository) ListApplicants(ctx context.Context, lessonSeq int64) ([]Applicant, error) {
	start := time.Now()
	applicants := make([]Applicant, 0)
	err := r.db.NewSelect().
		TableExpr("applied_lessons AS al").
		Join("JOIN users AS u ON u.user_id = al.tutee_id").
		ColumnExpr("al.apply_seq, al.tutee_id, u.name, u.nickname, u.email").
		ColumnExpr("al.apply_ok, COALESCE(al.memo, '') AS memo, al.created_at").
		Where("al.lesson_seq = ?", lessonSeq).
		Order("al.created_at ASC", "al.apply_seq ASC").
		Scan(ctx, &applicants)

	r.metrics.Database.RecordQuery(ctx, "select", "applied_lessons", time.Since(start), err)

	return applicants, err
}

// ApproveApplication moves a pending application to approved. It affects at
// most one row, so of two concurrent approvals only one succeeds.
func (r *repository) ApproveApplication(ctx context.Context, lessonSeq int64, tuteeID string) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Application)(nil)).
		Set("apply_ok = ?", ApplyApproved).
		Where("lesson_seq = ?", lessonSeq).
		Where("tutee_id = ?", tuteeID).
		Where("apply_ok = ?", ApplyPending).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "applied_lessons", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}

func (r *repository) DeleteApplication(ctx context.Context, lessonSeq int64, tuteeID string) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Application)(nil)).
		Where("lesson_seq = ?", lessonSeq).
		Where("tutee_id = ?", tuteeID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "applied_lessons", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}

func (r *repository) CreateFavorite(ctx context.Context, fav *Favorite) (*Favorite, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(fav).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "favorites_lessons", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return fav, nil
}

func (r *repository) GetFavorite(ctx context.Context, favLesSeq int64) (*Favorite, error) {
	start := time.Now()
	fav := new(Favorite)
	err := r.db.NewSelect().Model(fav).Where("fav_les_seq = ?", favLesSeq).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "favorites_lessons", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return fav, nil
}

func (r *repository) DeleteFavorite(ctx context.Context, favLesSeq int64) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Favorite)(nil)).
		Where("fav_les_seq = ?", favLesSeq).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "favorites_lessons", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}
