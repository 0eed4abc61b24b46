package services

import (
	"context"
	"strings"
	"time"

	"bookmarket/internal/domain"
	"bookmarket/internal/repos"
	"bookmarket/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages profiles and, for admins, every account.
type UserService struct {
	DB *sqlx.DB
}

func NewUserService(db *sqlx.DB) *UserService { return &UserService{DB: db} }

// ProfilePatch holds the fields a user may change on their own account.
// Username and role are not part of it.
type ProfilePatch struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone_number" validate:"omitempty,phone"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// UserInput is the admin payload for creating or replacing an account.
type UserInput struct {
	Username  string      `json:"username" validate:"required,max=150"`
	Password  string      `json:"password" validate:"omitempty,min=8,max=128"`
	Email     string      `json:"email" validate:"required,email"`
	Phone     string      `json:"phone_number" validate:"required,phone"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Role      domain.Role `json:"role" validate:"omitempty,oneof=buyer seller admin"`
	IsActive  *bool       `json:"is_active"`
}

func requireAdmin(actor domain.Principal) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("You do not have permission to perform this action.")
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, actor domain.Principal) (domain.User, error) {
	u, err := repos.NewUserRepo(s.DB).ByID(ctx, actor.ID)
	if err != nil {
		return domain.User{}, err
	}
	return *u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Principal, p ProfilePatch) (domain.User, error) {
	if err := validate.Struct(p); err != nil {
		return domain.User{}, err
	}
	var out domain.User
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		u, err := users.ByID(ctx, actor.ID)
		if err != nil {
			return err
		}
		if p.Email != nil {
			u.Email = strings.TrimSpace(*p.Email)
		}
		if p.Phone != nil {
			u.Phone = *p.Phone
		}
		if p.FirstName != nil {
			u.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			u.LastName = *p.LastName
		}
		if err := uniqueness(ctx, users, u.ID, "", u.Email, u.Phone); err != nil {
			return err
		}
		if err := users.Update(ctx, u); err != nil {
			return err
		}
		if p.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			if err := users.SetPassword(ctx, u.ID, string(hash)); err != nil {
				return err
			}
		}
		out = *u
		return nil
	})
	return out, err
}

// ---------- Admin ----------

func (s *UserService) List(ctx context.Context, actor domain.Principal) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return repos.NewUserRepo(s.DB).List(ctx)
}

func (s *UserService) Get(ctx context.Context, actor domain.Principal, id string) (domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.User{}, err
	}
	u, err := repos.NewUserRepo(s.DB).ByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return *u, nil
}

func (s *UserService) Create(ctx context.Context, actor domain.Principal, in UserInput) (domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.User{}, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return domain.User{}, err
	}
	if in.Password == "" {
		return domain.User{}, domain.Validation("password", "This field is required.")
	}
	if in.Role == "" {
		in.Role = domain.RoleBuyer
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		Phone:     in.Phone,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Hash:      string(hash),
		Role:      in.Role,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedAt: time.Now().UTC(),
	}
	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		if err := uniqueness(ctx, users, "", u.Username, u.Email, u.Phone); err != nil {
			return err
		}
		return users.Create(ctx, &u)
	})
	return u, err
}

func (s *UserService) Update(ctx context.Context, actor domain.Principal, id string, in UserInput) (domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.User{}, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return domain.User{}, err
	}
	var out domain.User
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		u, err := users.ByID(ctx, id)
		if err != nil {
			return err
		}
		u.Username, u.Email, u.Phone = in.Username, in.Email, in.Phone
		u.FirstName, u.LastName = in.FirstName, in.LastName
		if in.Role != "" {
			u.Role = in.Role
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		if err := uniqueness(ctx, users, u.ID, u.Username, u.Email, u.Phone); err != nil {
			return err
		}
		if err := users.Update(ctx, u); err != nil {
			return err
		}
		if in.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			if err := users.SetPassword(ctx, u.ID, string(hash)); err != nil {
				return err
			}
		}
		out = *u
		return nil
	})
	return out, err
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.ID {
		return domain.Validation("", "You cannot delete your own account.")
	}
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		return repos.NewUserRepo(tx).DeleteCascade(ctx, id)
	})
}

// UpdateRole changes a user's role; only buyer, seller and admin are accepted.
func (s *UserService) UpdateRole(ctx context.Context, actor domain.Principal, id string, role domain.Role) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !role.Valid() {
		return domain.Validation("role", "Invalid role provided.")
	}
	return repos.NewUserRepo(s.DB).SetRole(ctx, id, role)
}
