package user

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the closed set of account roles stored in users.role.
type Role int16

const (
	RoleTutor     Role = 1
	RoleTutee     Role = 2
	RoleWithdrawn Role = 3
	RoleAdmin     Role = 9
)

func (r Role) Valid() bool {
	switch r {
	case RoleTutor, RoleTutee, RoleWithdrawn, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleTutor:
		return "tutor"
	case RoleTutee:
		return "tutee"
	case RoleWithdrawn:
		return "withdrawn"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID    string    `bun:"user_id,pk" json:"userId"`
	Password  string    `bun:"pwd,notnull" json:"-"`
	Name      string    `bun:"name,notnull" json:"name"`
	Nickname  string    `bun:"nickname,notnull" json:"nickname"`
	Email     string    `bun:"email,notnull" json:"email"`
	Tel       string    `bun:"tel,nullzero" json:"tel,omitempty"`
	Addr      string    `bun:"addr,nullzero" json:"addr,omitempty"`
	Role      Role      `bun:"role,notnull" json:"role"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
