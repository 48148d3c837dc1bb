package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/kosta-developer/DEVELOPER-Back/internal/auth"
	"github.com/kosta-developer/DEVELOPER-Back/internal/lesson"
	"github.com/kosta-developer/DEVELOPER-Back/internal/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrLoginRequired       = errors.New("login required")
	ErrNotApplicant        = errors.New("only the applicant can review this lesson")
	ErrNotReviewable       = errors.New("application has not been approved yet")
	ErrAlreadyReviewed     = errors.New("application already reviewed")
)

// Applications is the slice of the lesson store reviews depend on.
type Applications interface {
	GetApplication(ctx context.Context, applySeq int64) (*lesson.Application, error)
	GetBySeq(ctx context.Context, lessonSeq int64) (*lesson.Lesson, error)
}

type Service interface {
	AddReview(ctx context.Context, id auth.Identity, applySeq int64, req CreateRequest) (*Review, error)
	ListByLesson(ctx context.Context, lessonSeq int64) ([]View, error)
}

type service struct {
	repo    Repository
	apps    Applications
	metrics *metrics.Metrics
}

func NewService(repo Repository, apps Applications, m *metrics.Metrics) Service {
	return &service{
		repo:    repo,
		apps:    apps,
		metrics: m,
	}
}

// AddReview lets the applicant review an approved application once.
func (s *service) AddReview(ctx context.Context, id auth.Identity, applySeq int64, req CreateRequest) (*Review, error) {
	if id.Anonymous() {
		return nil, ErrLoginRequired
	}

	app, err := s.apps.GetApplication(ctx, applySeq)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app.TuteeID != id.UserID {
		return nil, ErrNotApplicant
	}
	if app.ApplyOK != lesson.ApplyApproved {
		return nil, ErrNotReviewable
	}

	created, err := s.repo.Create(ctx, &Review{
		ApplySeq: applySeq,
		Star:     req.Star,
		Review:   req.Review,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, ErrAlreadyReviewed
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.metrics.RecordReviewAdded(ctx)
	return created, nil
}

func (s *service) ListByLesson(ctx context.Context, lessonSeq int64) ([]View, error) {
	if _, err := s.apps.GetBySeq(ctx, lessonSeq); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return s.repo.ListByLesson(ctx, lessonSeq)
}
