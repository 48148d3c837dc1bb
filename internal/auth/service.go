package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/internal/host"
	"github.com/kosta-developer/DEVELOPER-Back/internal/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
	"github.com/kosta-developer/DEVELOPER-Back/internal/tutor"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid user id or password")
	ErrAccountExists       = errors.New("user id, nickname or email already in use")
	ErrAccountWithdrawn    = errors.New("account has been withdrawn")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type Service struct {
	authRepo   *Repository
	userRepo   user.Repository
	hostRepo   host.Repository
	tokens     *TokenManager
	refreshTTL time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(
	authRepo *Repository,
	userRepo user.Repository,
	hostRepo host.Repository,
	tokens *TokenManager,
	refreshTTL time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		authRepo:   authRepo,
		userRepo:   userRepo,
		hostRepo:   hostRepo,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		metrics:    m,
		logger:     logger,
	}
}

// Register creates a tutee account. With req.Tutor set it also files a
// pending tutor application for an administrator to approve.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created := &user.User{
		UserID:   req.UserID,
		Password: string(hashed),
		Name:     req.Name,
		Nickname: req.Nickname,
		Email:    req.Email,
		Tel:      req.Tel,
		Addr:     req.Addr,
		Role:     user.RoleTutee,
	}

	var application *tutor.Tutor
	if req.Tutor {
		application = &tutor.Tutor{
			UserID:       created.UserID,
			Introduction: req.Introduction,
			Career:       req.Career,
		}
	}

	if err := s.authRepo.CreateAccount(ctx, created, application); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if req.Tutor {
		s.metrics.RecordRegistration(ctx, "tutor_applicant")
	} else {
		s.metrics.RecordRegistration(ctx, "tutee")
	}

	resp, err := s.generateTokenPair(ctx, created)
	if err != nil {
		return nil, err
	}
	resp.TutorPending = req.Tutor
	return resp, nil
}

// RegisterHost creates a host account that stays unusable until approved.
func (s *Service) RegisterHost(ctx context.Context, req HostRegisterRequest) (*host.HostUser, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.hostRepo.Create(ctx, &host.HostUser{
		HostID:     req.HostID,
		Password:   string(hashed),
		Name:       req.Name,
		Email:      req.Email,
		Tel:        req.Tel,
		BusinessNo: req.BusinessNo,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create host: %w", err)
	}

	s.metrics.RecordRegistration(ctx, "host")
	return created, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if u.Role == user.RoleWithdrawn {
		return nil, ErrAccountWithdrawn
	}

	return s.generateTokenPair(ctx, u)
}

// RefreshAccessToken rotates the refresh token and issues a new access token.
// The role is re-read so approvals take effect on the next refresh.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	stored, err := s.authRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if u.Role == user.RoleWithdrawn {
		return nil, ErrAccountWithdrawn
	}

	if err := s.authRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.generateTokenPair(ctx, u)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := s.authRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return err
	}

	if n, err := s.authRepo.DeleteExpiredTokens(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to sweep expired refresh tokens", "error", err)
	} else if n > 0 {
		s.logger.DebugContext(ctx, "swept expired refresh tokens", "count", n)
	}
	return nil
}

func (s *Service) generateTokenPair(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(u.UserID, u.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.authRepo.CreateRefreshToken(ctx, u.UserID, refreshToken, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         u,
	}, nil
}
