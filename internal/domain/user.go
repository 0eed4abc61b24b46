package domain

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone_number" json:"phone_number"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Hash      string    `db:"password_hash" json:"-"`
	Role      Role      `db:"role" json:"role"`
	IsStaff   bool      `db:"is_staff" json:"is_staff"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	ResetCode *string   `db:"reset_code" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Principal is the authenticated caller threaded into every service call.
type Principal struct {
	ID      string
	Role    Role
	IsStaff bool
}

func (p Principal) IsAdmin() bool { return p.IsStaff || p.Role == RoleAdmin }

func (p Principal) CanSell() bool { return p.Role == RoleSeller || p.IsAdmin() }

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, IsStaff: u.IsStaff}
}
