package studyroom

import (
	"time"

	"github.com/uptrace/bun"
)

type Studyroom struct {
	bun.BaseModel `bun:"table:studyrooms,alias:sr"`

	SrSeq     int64     `bun:"sr_seq,pk,autoincrement" json:"srSeq"`
	HostID    string    `bun:"host_id,notnull" json:"hostId"`
	Name      string    `bun:"name,notnull" json:"name"`
	Addr      string    `bun:"addr,notnull" json:"addr"`
	Info      string    `bun:"info,nullzero" json:"info,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Favorite struct {
	bun.BaseModel `bun:"table:favorites_studyrooms,alias:fs"`

	FavSrSeq  int64     `bun:"fav_sr_seq,pk,autoincrement" json:"favSrSeq"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	SrSeq     int64     `bun:"sr_seq,notnull" json:"srSeq"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:rs"`

	ResSeq    int64     `bun:"res_seq,pk,autoincrement" json:"resSeq"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	SrSeq     int64     `bun:"sr_seq,notnull" json:"srSeq"`
	StartTime time.Time `bun:"start_time,notnull" json:"startTime"`
	EndTime   time.Time `bun:"end_time,notnull" json:"endTime"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
