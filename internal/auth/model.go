package auth

import (
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/internal/host"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"

	"github.com/uptrace/bun"
)

type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	Token     string    `bun:"token,unique,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type RegisterRequest struct {
	UserID       string `json:"userId" validate:"required,alphanum,min=4,max=50"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Name         string `json:"name" validate:"required,max=50"`
	Nickname     string `json:"nickname" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Tel          string `json:"tel" validate:"omitempty,max=20"`
	Addr         string `json:"addr" validate:"omitempty,max=200"`
	Tutor        bool   `json:"tutor"`
	Introduction string `json:"introduction" validate:"required_if=Tutor true,max=2000"`
	Career       string `json:"career" validate:"max=2000"`
}

type HostRegisterRequest struct {
	HostID     string `json:"hostId" validate:"required,alphanum,min=4,max=50"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Name       string `json:"name" validate:"required,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Tel        string `json:"tel" validate:"omitempty,max=20"`
	BusinessNo string `json:"businessNo" validate:"required,max=20"`
}

type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         *user.User `json:"user"`
	TutorPending bool       `json:"tutorPending,omitempty"`
}

type HostRegisterResponse struct {
	Host    *host.HostUser `json:"host"`
	Message string         `json:"message"`
}
