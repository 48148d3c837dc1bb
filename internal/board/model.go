package board

import (
	"time"

	"github.com/uptrace/bun"
)

type Board struct {
	bun.BaseModel `bun:"table:boards,alias:b"`

	PostSeq   int64     `bun:"post_seq,pk,autoincrement" json:"postSeq"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	Title     string    `bun:"title,notnull" json:"title"`
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Reply struct {
	bun.BaseModel `bun:"table:board_reps,alias:br"`

	RepSeq    int64     `bun:"rep_seq,pk,autoincrement" json:"repSeq"`
	PostSeq   int64     `bun:"post_seq,notnull" json:"postSeq"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Recommend is one user's upvote on a post.
type Recommend struct {
	bun.BaseModel `bun:"table:recommends,alias:rc"`

	RecSeq    int64     `bun:"rec_seq,pk,autoincrement" json:"recSeq"`
	PostSeq   int64     `bun:"post_seq,notnull" json:"postSeq"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
