package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kosta-developer/DEVELOPER-Back/internal/auth"
	"github.com/kosta-developer/DEVELOPER-Back/internal/events"
	"github.com/kosta-developer/DEVELOPER-Back/internal/host"
	"github.com/kosta-developer/DEVELOPER-Back/internal/lesson"
	"github.com/kosta-developer/DEVELOPER-Back/internal/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/studyroom"
	"github.com/kosta-developer/DEVELOPER-Back/internal/tutor"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"

	"github.com/go-playground/validator/v10"
)

// dashboardSize is how many recent rows of each kind the admin landing page shows.
const dashboardSize = 5

type Users interface {
	List(ctx context.Context) ([]user.User, error)
	SearchByIDPrefix(ctx context.Context, prefix string) ([]user.User, error)
	GetByID(ctx context.Context, userID string) (*user.User, error)
	DeleteCascade(ctx context.Context, userID string) error
}

type Tutors interface {
	ListPending(ctx context.Context) ([]tutor.Application, error)
	Approve(ctx context.Context, userID string) error
	DeletePending(ctx context.Context, userID string) error
}

type Hosts interface {
	ListPending(ctx context.Context) ([]host.HostUser, error)
	Approve(ctx context.Context, hostID string) error
	DeletePending(ctx context.Context, hostID string) error
}

type Lessons interface {
	GetBySeq(ctx context.Context, lessonSeq int64) (*lesson.Lesson, error)
	ListAll(ctx context.Context) ([]lesson.Lesson, error)
	Latest(ctx context.Context, limit int) ([]lesson.Lesson, error)
	CreateApplication(ctx context.Context, app *lesson.Application) (*lesson.Application, error)
	ListApplicants(ctx context.Context, lessonSeq int64) ([]lesson.Applicant, error)
	ApproveApplication(ctx context.Context, lessonSeq int64, tuteeID string) error
	DeleteApplication(ctx context.Context, lessonSeq int64, tuteeID string) error
	CreateFavorite(ctx context.Context, fav *lesson.Favorite) (*lesson.Favorite, error)
	GetFavorite(ctx context.Context, favLesSeq int64) (*lesson.Favorite, error)
	DeleteFavorite(ctx context.Context, favLesSeq int64) error
}

type Studyrooms interface {
	GetBySeq(ctx context.Context, srSeq int64) (*studyroom.Studyroom, error)
	Latest(ctx context.Context, limit int) ([]studyroom.Studyroom, error)
	CreateFavorite(ctx context.Context, fav *studyroom.Favorite) (*studyroom.Favorite, error)
	GetFavorite(ctx context.Context, favSrSeq int64) (*studyroom.Favorite, error)
	DeleteFavorite(ctx context.Context, favSrSeq int64) error
}

// Stores groups the persistence collaborators of the engine.
type Stores struct {
	Users      Users
	Tutors     Tutors
	Hosts      Hosts
	Lessons    Lessons
	Studyrooms Studyrooms
}

type ApplyRequest struct {
	Memo string `json:"memo" validate:"max=500"`
}

type Dashboard struct {
	RecentStudyrooms []studyroom.Studyroom `json:"recentStudyrooms"`
	RecentLessons    []lesson.Lesson       `json:"recentLessons"`
}

// Service is the approval and enrollment workflow. Every call carries the
// caller explicitly; nothing is cached between calls.
type Service interface {
	ListPendingTutors(ctx context.Context, id auth.Identity) ([]tutor.Application, error)
	ApproveTutor(ctx context.Context, id auth.Identity, userID string) error
	RejectTutor(ctx context.Context, id auth.Identity, userID string) error

	ListPendingHosts(ctx context.Context, id auth.Identity) ([]host.HostUser, error)
	ApproveHost(ctx context.Context, id auth.Identity, hostID string) error
	RejectHost(ctx context.Context, id auth.Identity, hostID string) error

	ApplyToLesson(ctx context.Context, id auth.Identity, lessonSeq int64, req ApplyRequest) (*lesson.Application, error)
	ListApplicants(ctx context.Context, id auth.Identity, lessonSeq int64) ([]lesson.Applicant, error)
	ApproveApplicant(ctx context.Context, id auth.Identity, lessonSeq int64, tuteeID string) error
	RemoveApplicant(ctx context.Context, id auth.Identity, lessonSeq int64, tuteeID string) error

	AddFavoriteLesson(ctx context.Context, id auth.Identity, lessonSeq int64) (*lesson.Favorite, error)
	RemoveFavorite(ctx context.Context, id auth.Identity, favLesSeq int64) error
	AddFavoriteStudyroom(ctx context.Context, id auth.Identity, srSeq int64) (*studyroom.Favorite, error)
	RemoveFavoriteStudyroom(ctx context.Context, id auth.Identity, favSrSeq int64) error

	DashboardSummary(ctx context.Context, id auth.Identity) (*Dashboard, error)
	ListAllLessons(ctx context.Context, id auth.Identity) ([]lesson.Lesson, error)
	ListUsers(ctx context.Context, id auth.Identity) ([]user.User, error)
	SearchUsers(ctx context.Context, id auth.Identity, prefix string) ([]user.User, error)
	UserDetail(ctx context.Context, id auth.Identity, userID string) (*user.User, error)
	DeleteUser(ctx context.Context, id auth.Identity, userID string) error
}

type service struct {
	stores    Stores
	publisher events.Publisher
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(stores Stores, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{
		stores:    stores,
		publisher: publisher,
		validate:  validator.New(),
		metrics:   m,
		logger:    logger,
	}
}

// requireAdmin is the role gate of every moderation operation. Anonymous
// callers fail it like any other non-admin.
func (s *service) requireAdmin(ctx context.Context, id auth.Identity, op string) error {
	if !id.IsAdmin() {
		return s.deny(ctx, id, op, ErrPermissionDenied)
	}
	return nil
}

// requireMember rejects anonymous and withdrawn callers.
func (s *service) requireMember(ctx context.Context, id auth.Identity, op string) error {
	if id.Anonymous() {
		return s.deny(ctx, id, op, ErrAuthRequired)
	}
	if id.Role == user.RoleWithdrawn {
		return s.deny(ctx, id, op, ErrPermissionDenied)
	}
	return nil
}

func (s *service) deny(ctx context.Context, id auth.Identity, op string, err error) error {
	s.metrics.RecordDenied(ctx, op)
	s.logger.WarnContext(ctx, "workflow call denied", "operation", op, "user_id", id.UserID, "role", id.Role.String())
	return fmt.Errorf("%s: %w", op, err)
}

// committed records a finished transition and publishes its event.
// A publish failure is logged only: the state change is already durable.
func (s *service) committed(ctx context.Context, id auth.Identity, eventType, subject string, payload map[string]any) {
	s.metrics.RecordTransition(ctx, eventType)
	s.logger.InfoContext(ctx, "workflow transition committed", "event", eventType, "subject", subject, "actor", id.UserID)

	if err := s.publisher.Publish(ctx, events.New(eventType, subject, id.UserID, payload)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish workflow event", "event", eventType, "subject", subject, "error", err)
	}
}

func (s *service) ListPendingTutors(ctx context.Context, id auth.Identity) ([]tutor.Application, error) {
	if err := s.requireAdmin(ctx, id, "list pending tutors"); err != nil {
		return nil, err
	}

	apps, err := s.stores.Tutors.ListPending(ctx)
	if err != nil {
		return nil, fromStore(err, "list pending tutors")
	}
	return apps, nil
}

// ApproveTutor approves a pending application and promotes the user to tutor.
func (s *service) ApproveTutor(ctx context.Context, id auth.Identity, userID string) error {
	if err := s.requireAdmin(ctx, id, "approve tutor"); err != nil {
		return err
	}

	if err := s.stores.Tutors.Approve(ctx, userID); err != nil {
		return fromStore(err, "pending tutor application "+userID)
	}

	s.committed(ctx, id, events.TutorApproved, userID, map[string]any{"role": int(user.RoleTutor)})
	return nil
}

// RejectTutor deletes a pending application. Rejection keeps no record.
func (s *service) RejectTutor(ctx context.Context, id auth.Identity, userID string) error {
	if err := s.requireAdmin(ctx, id, "reject tutor"); err != nil {
		return err
	}

	if err := s.stores.Tutors.DeletePending(ctx, userID); err != nil {
		return fromStore(err, "pending tutor application "+userID)
	}

	s.committed(ctx, id, events.TutorRejected, userID, nil)
	return nil
}

func (s *service) ListPendingHosts(ctx context.Context, id auth.Identity) ([]host.HostUser, error) {
	if err := s.requireAdmin(ctx, id, "list pending hosts"); err != nil {
		return nil, err
	}

	hosts, err := s.stores.Hosts.ListPending(ctx)
	if err != nil {
		return nil, fromStore(err, "list pending hosts")
	}
	return hosts, nil
}

func (s *service) ApproveHost(ctx context.Context, id auth.Identity, hostID string) error {
	if err := s.requireAdmin(ctx, id, "approve host"); err != nil {
		return err
	}

	if err := s.stores.Hosts.Approve(ctx, hostID); err != nil {
		return fromStore(err, "pending host "+hostID)
	}

	s.committed(ctx, id, events.HostApproved, hostID, nil)
	return nil
}

func (s *service) RejectHost(ctx context.Context, id auth.Identity, hostID string) error {
	if err := s.requireAdmin(ctx, id, "reject host"); err != nil {
		return err
	}

	if err := s.stores.Hosts.DeletePending(ctx, hostID); err != nil {
		return fromStore(err, "pending host "+hostID)
	}

	s.committed(ctx, id, events.HostRejected, hostID, nil)
	return nil
}

// ApplyToLesson files a pending application of the caller for lessonSeq.
func (s *service) ApplyToLesson(ctx context.Context, id auth.Identity, lessonSeq int64, req ApplyRequest) (*lesson.Application, error) {
	if err := s.requireMember(ctx, id, "apply to lesson"); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("apply to lesson: %w: %v", ErrValidation, err)
	}

	if _, err := s.stores.Lessons.GetBySeq(ctx, lessonSeq); err != nil {
		return nil, fromStore(err, fmt.Sprintf("lesson %d", lessonSeq))
	}

	app, err := s.stores.Lessons.CreateApplication(ctx, &lesson.Application{
		TuteeID:   id.UserID,
		LessonSeq: lessonSeq,
		Memo:      req.Memo,
	})
	if err != nil {
		return nil, fromStore(err, fmt.Sprintf("application of %s to lesson %d", id.UserID, lessonSeq))
	}

	s.committed(ctx, id, events.LessonApplied, id.UserID, map[string]any{
		"lessonSeq": lessonSeq,
		"applySeq":  app.ApplySeq,
	})
	return app, nil
}

// lessonManager loads the lesson and checks the caller is an admin or its tutor.
func (s *service) lessonManager(ctx context.Context, id auth.Identity, lessonSeq int64, op string) error {
	if id.Anonymous() {
		return s.deny(ctx, id, op, ErrAuthRequired)
	}
	if id.Role != user.RoleAdmin && id.Role != user.RoleTutor {
		return s.deny(ctx, id, op, ErrPermissionDenied)
	}

	l, err := s.stores.Lessons.GetBySeq(ctx, lessonSeq)
	if err != nil {
		return fromStore(err, fmt.Sprintf("lesson %d", lessonSeq))
	}
	if id.Role != user.RoleAdmin && l.TutorID != id.UserID {
		return s.deny(ctx, id, op, ErrPermissionDenied)
	}
	return nil
}

func (s *service) ListApplicants(ctx context.Context, id auth.Identity, lessonSeq int64) ([]lesson.Applicant, error) {
	if err := s.lessonManager(ctx, id, lessonSeq, "list applicants"); err != nil {
		return nil, err
	}

	applicants, err := s.stores.Lessons.ListApplicants(ctx, lessonSeq)
	if err != nil {
		return nil, fromStore(err, "list applicants")
	}
	return applicants, nil
}

// ApproveApplicant moves a pending application to approved, once.
func (s *service) ApproveApplicant(ctx context.Context, id auth.Identity, lessonSeq int64, tuteeID string) error {
	if err := s.lessonManager(ctx, id, lessonSeq, "approve applicant"); err != nil {
		return err
	}

	if err := s.stores.Lessons.ApproveApplication(ctx, lessonSeq, tuteeID); err != nil {
		return fromStore(err, fmt.Sprintf("pending application of %s to lesson %d", tuteeID, lessonSeq))
	}

	s.committed(ctx, id, events.LessonApplicationApproved, tuteeID, map[string]any{"lessonSeq": lessonSeq})
	return nil
}

// RemoveApplicant deletes an application in any state. Admins may remove
// anyone; other callers only their own application.
func (s *service) RemoveApplicant(ctx context.Context, id auth.Identity, lessonSeq int64, tuteeID string) error {
	const op = "remove applicant"
	if id.Anonymous() {
		return s.deny(ctx, id, op, ErrAuthRequired)
	}
	if !id.IsAdmin() && id.UserID != tuteeID {
		return s.deny(ctx, id, op, ErrPermissionDenied)
	}

	if err := s.stores.Lessons.DeleteApplication(ctx, lessonSeq, tuteeID); err != nil {
		return fromStore(err, fmt.Sprintf("application of %s to lesson %d", tuteeID, lessonSeq))
	}

	s.committed(ctx, id, events.LessonApplicationRemoved, tuteeID, map[string]any{"lessonSeq": lessonSeq})
	return nil
}

func (s *service) AddFavoriteLesson(ctx context.Context, id auth.Identity, lessonSeq int64) (*lesson.Favorite, error) {
	if err := s.requireMember(ctx, id, "add favorite lesson"); err != nil {
		return nil, err
	}

	if _, err := s.stores.Lessons.GetBySeq(ctx, lessonSeq); err != nil {
		return nil, fromStore(err, fmt.Sprintf("lesson %d", lessonSeq))
	}

	fav, err := s.stores.Lessons.CreateFavorite(ctx, &lesson.Favorite{UserID: id.UserID, LessonSeq: lessonSeq})
	if err != nil {
		return nil, fromStore(err, fmt.Sprintf("favorite of %s on lesson %d", id.UserID, lessonSeq))
	}

	s.committed(ctx, id, events.LessonFavorited, id.UserID, map[string]any{"lessonSeq": lessonSeq})
	return fav, nil
}

func (s *service) RemoveFavorite(ctx context.Context, id auth.Identity, favLesSeq int64) error {
	const op = "remove favorite lesson"
	if id.Anonymous() {
		return s.deny(ctx, id, op, ErrAuthRequired)
	}

	fav, err := s.stores.Lessons.GetFavorite(ctx, favLesSeq)
	if err != nil {
		return fromStore(err, fmt.Sprintf("favorite %d", favLesSeq))
	}
	if !id.IsAdmin() && fav.UserID != id.UserID {
		return s.deny(ctx, id, op, ErrPermissionDenied)
	}

	if err := s.stores.Lessons.DeleteFavorite(ctx, favLesSeq); err != nil {
		return fromStore(err, fmt.Sprintf("favorite %d", favLesSeq))
	}

	s.committed(ctx, id, events.LessonUnfavorited, fav.UserID, map[string]any{
		"lessonSeq": fav.LessonSeq,
		"favLesSeq": favLesSeq,
	})
	return nil
}

func (s *service) AddFavoriteStudyroom(ctx context.Context, id auth.Identity, srSeq int64) (*studyroom.Favorite, error) {
	if err := s.requireMember(ctx, id, "add favorite studyroom"); err != nil {
		return nil, err
	}

	if _, err := s.stores.Studyrooms.GetBySeq(ctx, srSeq); err != nil {
		return nil, fromStore(err, fmt.Sprintf("studyroom %d", srSeq))
	}

	fav, err := s.stores.Studyrooms.CreateFavorite(ctx, &studyroom.Favorite{UserID: id.UserID, SrSeq: srSeq})
	if err != nil {
		return nil, fromStore(err, fmt.Sprintf("favorite of %s on studyroom %d", id.UserID, srSeq))
	}

	s.committed(ctx, id, events.StudyroomFavorited, id.UserID, map[string]any{"srSeq": srSeq})
	return fav, nil
}

func (s *service) RemoveFavoriteStudyroom(ctx context.Context, id auth.Identity, favSrSeq int64) error {
	const op = "remove favorite studyroom"
	if id.Anonymous() {
		return s.deny(ctx, id, op, ErrAuthRequired)
	}

	fav, err := s.stores.Studyrooms.GetFavorite(ctx, favSrSeq)
	if err != nil {
		return fromStore(err, fmt.Sprintf("studyroom favorite %d", favSrSeq))
	}
	if !id.IsAdmin() && fav.UserID != id.UserID {
		return s.deny(ctx, id, op, ErrPermissionDenied)
	}

	if err := s.stores.Studyrooms.DeleteFavorite(ctx, favSrSeq); err != nil {
		return fromStore(err, fmt.Sprintf("studyroom favorite %d", favSrSeq))
	}

	s.committed(ctx, id, events.StudyroomUnfavorited, fav.UserID, map[string]any{
		"srSeq":    fav.SrSeq,
		"favSrSeq": favSrSeq,
	})
	return nil
}

func (s *service) DashboardSummary(ctx context.Context, id auth.Identity) (*Dashboard, error) {
	if err := s.requireAdmin(ctx, id, "dashboard"); err != nil {
		return nil, err
	}

	rooms, err := s.stores.Studyrooms.Latest(ctx, dashboardSize)
	if err != nil {
		return nil, fromStore(err, "recent studyrooms")
	}
	lessons, err := s.stores.Lessons.Latest(ctx, dashboardSize)
	if err != nil {
		return nil, fromStore(err, "recent lessons")
	}

	return &Dashboard{RecentStudyrooms: rooms, RecentLessons: lessons}, nil
}

func (s *service) ListAllLessons(ctx context.Context, id auth.Identity) ([]lesson.Lesson, error) {
	if err := s.requireAdmin(ctx, id, "list lessons"); err != nil {
		return nil, err
	}

	lessons, err := s.stores.Lessons.ListAll(ctx)
	if err != nil {
		return nil, fromStore(err, "list lessons")
	}
	return lessons, nil
}

func (s *service) ListUsers(ctx context.Context, id auth.Identity) ([]user.User, error) {
	if err := s.requireAdmin(ctx, id, "list users"); err != nil {
		return nil, err
	}

	users, err := s.stores.Users.List(ctx)
	if err != nil {
		return nil, fromStore(err, "list users")
	}
	return users, nil
}

func (s *service) SearchUsers(ctx context.Context, id auth.Identity, prefix string) ([]user.User, error) {
	if err := s.requireAdmin(ctx, id, "search users"); err != nil {
		return nil, err
	}

	users, err := s.stores.Users.SearchByIDPrefix(ctx, prefix)
	if err != nil {
		return nil, fromStore(err, "search users")
	}
	return users, nil
}

func (s *service) UserDetail(ctx context.Context, id auth.Identity, userID string) (*user.User, error) {
	if err := s.requireAdmin(ctx, id, "user detail"); err != nil {
		return nil, err
	}

	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "user "+userID)
	}
	return u, nil
}

// DeleteUser removes the account together with everything that references it.
func (s *service) DeleteUser(ctx context.Context, id auth.Identity, userID string) error {
	if err := s.requireAdmin(ctx, id, "delete user"); err != nil {
		return err
	}

	if err := s.stores.Users.DeleteCascade(ctx, userID); err != nil {
		return fromStore(err, "user "+userID)
	}

	s.committed(ctx, id, events.UserDeleted, userID, nil)
	return nil
}
