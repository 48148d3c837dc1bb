package lesson

import (
	"time"

	"github.com/uptrace/bun"
)

// ApplyState is applied_lessons.apply_ok.
type ApplyState int16

const (
	ApplyPending  ApplyState = 0
	ApplyApproved ApplyState = 1
)

type Lesson struct {
	bun.BaseModel `bun:"table:lessons,alias:l"`

	LessonSeq   int64      `bun:"lesson_seq,pk,autoincrement" json:"lessonSeq"`
	TutorID     string     `bun:"tutor_id,notnull" json:"tutorId"`
	Name        string     `bun:"name,notnull" json:"name"`
	Description string     `bun:"description,nullzero" json:"description,omitempty"`
	Category    string     `bun:"category,nullzero" json:"category,omitempty"`
	Price       int        `bun:"price,notnull" json:"price"`
	People      int        `bun:"people,notnull" json:"people"`
	StartDate   *time.Time `bun:"start_date,type:date" json:"startDate,omitempty"`
	EndDate     *time.Time `bun:"end_date,type:date" json:"endDate,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Application is a tutee's enrollment request for a lesson.
type Application struct {
	bun.BaseModel `bun:"table:applied_lessons,alias:al"`

	ApplySeq  int64      `bun:"apply_seq,pk,autoincrement" json:"applySeq"`
	TuteeID   string     `bun:"tutee_id,notnull" json:"tuteeId"`
	LessonSeq int64      `bun:"lesson_seq,notnull" json:"lessonSeq"`
	ApplyOK   ApplyState `bun:"apply_ok,notnull" json:"applyOk"`
	Memo      string     `bun:"memo,nullzero" json:"memo,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Applicant is an application joined with the applying account.
type Applicant struct {
	ApplySeq  int64      `bun:"apply_seq" json:"applySeq"`
	TuteeID   string     `bun:"tutee_id" json:"tuteeId"`
	Name      string     `bun:"name" json:"name"`
	Nickname  string     `bun:"nickname" json:"nickname"`
	Email     string     `bun:"email" json:"email"`
	ApplyOK   ApplyState `bun:"apply_ok" json:"applyOk"`
	Memo      string     `bun:"memo" json:"memo,omitempty"`
	CreatedAt time.Time  `bun:"created_at" json:"createdAt"`
}

type Favorite struct {
	bun.BaseModel `bun:"table:favorites_lessons,alias:fl"`

	FavLesSeq int64     `bun:"fav_les_seq,pk,autoincrement" json:"favLesSeq"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	LessonSeq int64     `bun:"lesson_seq,notnull" json:"lessonSeq"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Detail is a lesson with a summary of its tutor's reputation.
type Detail struct {
	Lesson *Lesson `json:"lesson"`
	TutorStats
}

type TutorStats struct {
	TutorNickname    string  `bun:"tutor_nickname" json:"tutorNickname"`
	TutorReviewCount int     `bun:"tutor_review_count" json:"tutorReviewCount"`
	TutorAvgStar     float64 `bun:"tutor_avg_star" json:"tutorAvgStar"`
	ApprovedCount    int     `bun:"approved_count" json:"approvedCount"`
}

type CreateLessonRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=4000"`
	Category    string     `json:"category" validate:"max=50"`
	Price       int        `json:"price" validate:"gte=0"`
	People      int        `json:"people" validate:"required,gt=0,lte=100"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate" validate:"omitempty,gtefield=StartDate"`
}
