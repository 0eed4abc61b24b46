package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"bookmarket/internal/auth"
	"bookmarket/internal/domain"
	"bookmarket/internal/repos"
	"bookmarket/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCreds = domain.Unauthenticated("No active account found with the given credentials")

// AuthService covers registration, token issuance and password reset.
type AuthService struct {
	DB     *sqlx.DB
	Tokens *auth.Tokens
}

func NewAuthService(db *sqlx.DB, tokens *auth.Tokens) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone_number" validate:"required,phone"`
}

// uniqueness reports clashes on username, email and phone as field errors.
func uniqueness(ctx context.Context, users *repos.UserRepo, exceptID, username, email, phone string) error {
	taken, err := users.Taken(ctx, exceptID, username, email, phone)
	if err != nil {
		return err
	}
	msgs := map[string]string{
		"username":     "A user with that username already exists.",
		"email":        "A user with this email already exists.",
		"phone_number": "This phone number is already in use.",
	}
	out := validate.Errors{}
	for field, clash := range taken {
		if clash {
			out[field] = msgs[field]
		}
	}
	if len(out) > 0 {
		return out
	}
	return nil
}

// Register creates a buyer account. The role is never taken from the request.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return domain.User{}, err
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
		Hash:      string(hash),
		Role:      domain.RoleBuyer,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		if err := uniqueness(ctx, users, "", u.Username, u.Email, u.Phone); err != nil {
			return err
		}
		return users.Create(ctx, &u)
	})
	if repos.IsUniqueViolation(err) {
		return domain.User{}, domain.Validation("username", "A user with that username already exists.")
	}
	return u, err
}

type Token struct {
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges credentials for a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (Token, domain.User, error) {
	u, err := repos.NewUserRepo(s.DB).ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return Token{}, domain.User{}, ErrBadCreds
		}
		return Token{}, domain.User{}, err
	}
	if !u.IsActive || bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return Token{}, domain.User{}, ErrBadCreds
	}
	tok, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return Token{}, domain.User{}, err
	}
	return Token{Access: tok, ExpiresAt: exp}, *u, nil
}

// CurrentUser resolves a bearer token to the active user it was issued for.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	id, err := s.Tokens.Subject(token)
	if err != nil {
		return nil, domain.Unauthenticated("Given token not valid for any token type")
	}
	u, err := repos.NewUserRepo(s.DB).ByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.Unauthenticated("User not found")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, domain.Unauthenticated("User is inactive")
	}
	return u, nil
}

type ResetRequest struct {
	Username string `json:"username" validate:"required"`
	Contact  string `json:"contact" validate:"required"`
}

type ResetConfirm struct {
	Contact     string `json:"contact" validate:"required"`
	Code        string `json:"code" validate:"required,max=6"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

func resetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

// RequestReset stores a fresh 4-digit code on the matching user and returns it.
// Delivering the code is someone else's job.
func (s *AuthService) RequestReset(ctx context.Context, in ResetRequest) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", err
	}
	users := repos.NewUserRepo(s.DB)
	u, err := users.ByContact(ctx, strings.TrimSpace(in.Username), strings.TrimSpace(in.Contact))
	if err != nil {
		if isNotFound(err) {
			return "", domain.Validation("non_field_errors", "No user found with this username and contact information.")
		}
		return "", err
	}
	code, err := resetCode()
	if err != nil {
		return "", err
	}
	if err := users.SetResetCode(ctx, u.ID, &code); err != nil {
		return "", err
	}
	return code, nil
}

var errBadReset = domain.Validation("", "Invalid code or contact info.")

// ConfirmReset sets a new password when the contact and code match, then clears the code.
func (s *AuthService) ConfirmReset(ctx context.Context, in ResetConfirm) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	users := repos.NewUserRepo(s.DB)
	u, err := users.ByContact(ctx, "", strings.TrimSpace(in.Contact))
	if err != nil {
		if isNotFound(err) {
			return errBadReset
		}
		return err
	}
	if u.ResetCode == nil || *u.ResetCode != strings.TrimSpace(in.Code) {
		return errBadReset
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return users.SetPassword(ctx, u.ID, string(hash))
}
