package user

import (
	"context"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	SearchByIDPrefix(ctx context.Context, prefix string) ([]User, error)
	UpdateRole(ctx context.Context, userID string, role Role) error
	DeleteCascade(ctx context.Context, userID string) error
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

func (r *repository) Create(ctx context.Context, user *User) (*User, error) {
	if user.Role == 0 {
		user.Role = RoleTutee
	}

	start := time.Now()
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return user, nil
}

func (r *repository) GetByID(ctx context.Context, userID string) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().Model(user).Where("user_id = ?", userID).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return user, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	start := time.Now()
	users := make([]User, 0)
	err := r.db.NewSelect().Model(&users).Order("created_at DESC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	return users, err
}

func (r *repository) SearchByIDPrefix(ctx context.Context, prefix string) ([]User, error) {
	start := time.Now()
	users := make([]User, 0)
	err := r.db.NewSelect().
		Model(&users).
		Where("user_id LIKE ?", store.EscapeLike(prefix)+"%").
		Order("user_id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	return users, err
}

func (r *repository) UpdateRole(ctx context.Context, userID string, role Role) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("role = ?", role).
		Where("user_id = ?", userID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	if err != nil {
		return err
	}
	return store.RequireAffected(result)
}

// cascadeSteps removes everything that references a user, children before parents.
// Each statement binds the user id once per "?".
var cascadeSteps = []struct {
	table string
	where string
	binds int
}{
	{"recommends", "user_id = ? OR post_seq IN (SELECT post_seq FROM boards WHERE user_id = ?)", 2},
	{"board_reps", "user_id = ? OR post_seq IN (SELECT post_seq FROM boards WHERE user_id = ?)", 2},
	{"boards", "user_id = ?", 1},
	{"lesson_reviews", "apply_seq IN (SELECT apply_seq FROM applied_lessons WHERE tutee_id = ? OR lesson_seq IN (SELECT lesson_seq FROM lessons WHERE tutor_id = ?))", 2},
	{"applied_lessons", "tutee_id = ? OR lesson_seq IN (SELECT lesson_seq FROM lessons WHERE tutor_id = ?)", 2},
	{"favorites_lessons", "user_id = ? OR lesson_seq IN (SELECT lesson_seq FROM lessons WHERE tutor_id = ?)", 2},
	{"lessons", "tutor_id = ?", 1},
	{"tutors", "user_id = ?", 1},
	{"favorites_studyrooms", "user_id = ?", 1},
	{"reservations", "user_id = ?", 1},
	{"refresh_tokens", "user_id = ?", 1},
}

// DeleteCascade removes the user and every dependent row in one transaction.
func (r *repository) DeleteCascade(ctx context.Context, userID string) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, step := range cascadeSteps {
			args := make([]any, step.binds)
			for i := range args {
				args[i] = userID
			}
			if _, err := tx.NewDelete().TableExpr(step.table).Where(step.where, args...).Exec(ctx); err != nil {
				return err
			}
		}

		result, err := tx.NewDelete().Model((*User)(nil)).Where("user_id = ?", userID).Exec(ctx)
		if err != nil {
			return err
		}
		return store.RequireAffected(result)
	})

	r.metrics.Database.RecordQuery(ctx, "delete", "users", time.Since(start), err)
	r.metrics.Database.RecordTx(ctx, "delete_user_cascade", err)

	return err
}
