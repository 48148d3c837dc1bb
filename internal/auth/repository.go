package auth

import (
	"context"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
	"github.com/kosta-developer/DEVELOPER-Back/internal/tutor"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"

	"github.com/uptrace/bun"
)

type Repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

// CreateAccount inserts the user and, when application is not nil, the
// pending tutor application in one transaction. Either both rows exist
// afterwards or neither does.
func (r *Repository) CreateAccount(ctx context.Context, u *user.User, application *tutor.Tutor) error {
	if u.Role == 0 {
		u.Role = user.RoleTutee
	}

	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(u).Returning("*").Exec(ctx); err != nil {
			return err
		}
		if application == nil {
			return nil
		}
		_, err := tx.NewInsert().Model(application).Returning("*").Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)
	r.metrics.Database.RecordTx(ctx, "register_account", err)

	return store.Translate(err)
}

func (r *Repository) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	start := time.Now()
	refreshToken := &RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	_, err := r.db.NewInsert().Model(refreshToken).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "refresh_tokens", time.Since(start), err)

	return store.Translate(err)
}

// GetRefreshToken returns an unexpired token or store.ErrNotFound.
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	refreshToken := &RefreshToken{}
	err := r.db.NewSelect().
		Model(refreshToken).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return nil, store.Translate(err)
	}
	return refreshToken, nil
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, token string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

// DeleteExpiredTokens removes expired tokens and reports how many were dropped.
func (r *Repository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
