package review

import (
	"time"

	"github.com/uptrace/bun"
)

// Review belongs to exactly one approved application.
type Review struct {
	bun.BaseModel `bun:"table:lesson_reviews,alias:lr"`

	ApplySeq  int64     `bun:"apply_seq,pk" json:"applySeq"`
	Star      int       `bun:"star,notnull" json:"star"`
	Review    string    `bun:"review,notnull" json:"review"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// View is a review as shown on a lesson page.
type View struct {
	ApplySeq  int64     `bun:"apply_seq" json:"applySeq"`
	LessonSeq int64     `bun:"lesson_seq" json:"lessonSeq"`
	TuteeID   string    `bun:"tutee_id" json:"tuteeId"`
	Nickname  string    `bun:"nickname" json:"nickname"`
	Star      int       `bun:"star" json:"star"`
	Review    string    `bun:"review" json:"review"`
	CreatedAt time.Time `bun:"created_at" json:"createdAt"`
}

type CreateRequest struct {
	Star   int    `json:"star" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"required,max=2000"`
}
