package lesson

import (
	"context"
	"errors"
	"fmt"

	"github.com/kosta-developer/DEVELOPER-Back/internal/auth"
	"github.com/kosta-developer/DEVELOPER-Back/internal/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
	"github.com/kosta-developer/DEVELOPER-Back/internal/tutor"
)

var (
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrLoginRequired    = errors.New("login required")
	ErrNotApprovedTutor = errors.New("only approved tutors can open lessons")
	ErrInvalidInput     = errors.New("invalid input")
)

type Service interface {
	CreateLesson(ctx context.Context, id auth.Identity, req CreateLessonRequest) (*Lesson, error)
	SearchLessons(ctx context.Context, word string) ([]Lesson, error)
	GetDetail(ctx context.Context, lessonSeq int64) (*Detail, error)
}

type service struct {
	repo      Repository
	tutorRepo tutor.Repository
	metrics   *metrics.Metrics
}

func NewService(repo Repository, tutorRepo tutor.Repository, m *metrics.Metrics) Service {
	return &service{
		repo:      repo,
		tutorRepo: tutorRepo,
		metrics:   m,
	}
}

func (s *service) CreateLesson(ctx context.Context, id auth.Identity, req CreateLessonRequest) (*Lesson, error) {
	if id.Anonymous() {
		return nil, ErrLoginRequired
	}

	t, err := s.tutorRepo.GetByUserID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotApprovedTutor
		}
		return nil, fmt.Errorf("load tutor: %w", err)
	}
	if !t.Approved {
		return nil, ErrNotApprovedTutor
	}

	created, err := s.repo.Create(ctx, &Lesson{
		TutorID:     id.UserID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		People:      req.People,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	s.metrics.RecordLessonCreated(ctx)
	return created, nil
}

func (s *service) SearchLessons(ctx context.Context, word string) ([]Lesson, error) {
	return s.repo.Search(ctx, word)
}

func (s *service) GetDetail(ctx context.Context, lessonSeq int64) (*Detail, error) {
	if lessonSeq <= 0 {
		return nil, ErrInvalidInput
	}

	l, err := s.repo.GetBySeq(ctx, lessonSeq)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	stats, err := s.repo.TutorStats(ctx, lessonSeq, l.TutorID)
	if err != nil {
		return nil, fmt.Errorf("tutor stats: %w", err)
	}

	return &Detail{Lesson: l, TutorStats: *stats}, nil
}
