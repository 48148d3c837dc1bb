package host

import (
	"time"

	"github.com/uptrace/bun"
)

// HostUser operates study rooms. Ready=false means the account awaits approval.
type HostUser struct {
	bun.BaseModel `bun:"table:host_users,alias:h"`

	HostID     string     `bun:"host_id,pk" json:"hostId"`
	Password   string     `bun:"pwd,notnull" json:"-"`
	Name       string     `bun:"name,notnull" json:"name"`
	Email      string     `bun:"email,notnull" json:"email"`
	Tel        string     `bun:"tel,nullzero" json:"tel,omitempty"`
	BusinessNo string     `bun:"business_no,notnull" json:"businessNo"`
	Ready      bool       `bun:"ready,notnull" json:"ready"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	ApprovedAt *time.Time `bun:"approved_at" json:"approvedAt,omitempty"`
}
