package tutor

import (
	"time"

	"github.com/uptrace/bun"
)

// Tutor is a tutor application. Approved=false rows are pending.
type Tutor struct {
	bun.BaseModel `bun:"table:tutors,alias:t"`

	UserID       string     `bun:"user_id,pk" json:"userId"`
	Introduction string     `bun:"introduction,nullzero" json:"introduction,omitempty"`
	Career       string     `bun:"career,nullzero" json:"career,omitempty"`
	Approved     bool       `bun:"approved,notnull" json:"approved"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	ApprovedAt   *time.Time `bun:"approved_at" json:"approvedAt,omitempty"`
}

// Application is a pending tutor row joined with its account.
type Application struct {
	UserID       string    `bun:"user_id" json:"userId"`
	Name         string    `bun:"name" json:"name"`
	Nickname     string    `bun:"nickname" json:"nickname"`
	Email        string    `bun:"email" json:"email"`
	Introduction string    `bun:"introduction" json:"introduction,omitempty"`
	Career       string    `bun:"career" json:"career,omitempty"`
	CreatedAt    time.Time `bun:"created_at" json:"createdAt"`
}
