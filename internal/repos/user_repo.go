package repos

import (
	"context"
	"fmt"

	"bookmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ db sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

const userCols = `id,username,email,phone_number,first_name,last_name,password_hash,role,is_staff,is_active,reset_code,created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(`+userCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
	`, u.ID, u.Username, u.Email, u.Phone, u.FirstName, u.LastName, u.Hash, u.Role, u.IsStaff, u.IsActive, u.ResetCode, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := sqlx.GetContext(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id); err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := sqlx.GetContext(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE username=?`, username); err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// ByContact finds a user by email or phone number. An empty username matches any user.
func (r *UserRepo) ByContact(ctx context.Context, username, contact string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u, `
		SELECT `+userCols+` FROM users
		WHERE (? = '' OR username = ?)
		  AND (LOWER(email) = LOWER(?) OR phone_number = ?)
		ORDER BY created_at
		LIMIT 1
	`, username, username, contact, contact)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT `+userCols+` FROM users ORDER BY created_at DESC, rowid DESC`)
	return out, err
}

// Taken reports which of username/email/phone already belong to a user other than exceptID.
func (r *UserRepo) Taken(ctx context.Context, exceptID, username, email, phone string) (map[string]bool, error) {
	out := map[string]bool{}
	checks := []struct {
		field, query, val string
	}{
		{"username", `SELECT COUNT(*) FROM users WHERE username=? AND id<>?`, username},
		{"email", `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?) AND id<>?`, email},
		{"phone_number", `SELECT COUNT(*) FROM users WHERE phone_number=? AND id<>?`, phone},
	}
	for _, c := range checks {
		if c.val == "" {
			continue
		}
		var n int
		if err := sqlx.GetContext(ctx, r.db, &n, c.query, c.val, exceptID); err != nil {
			return nil, err
		}
		out[c.field] = n > 0
	}
	return out, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username=?, email=?, phone_number=?, first_name=?, last_name=?, role=?, is_staff=?, is_active=?
		WHERE id=?
	`, u.Username, u.Email, u.Phone, u.FirstName, u.LastName, u.Role, u.IsStaff, u.IsActive, u.ID)
	return affected(res, err, "user")
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role=? WHERE id=?`, role, id)
	return affected(res, err, "user")
}

func (r *UserRepo) SetResetCode(ctx context.Context, id string, code *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET reset_code=? WHERE id=?`, code, id)
	return affected(res, err, "user")
}

func (r *UserRepo) SetPassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash=?, reset_code=NULL WHERE id=?`, hash, id)
	return affected(res, err, "user")
}

// DeleteCascade removes the user together with everything they own. Run it inside a transaction.
func (r *UserRepo) DeleteCascade(ctx context.Context, id string) error {
	stmts := []string{
		`DELETE FROM transactions WHERE order_id IN (
		   SELECT o.id FROM orders o JOIN books b ON b.id=o.book_id WHERE o.buyer_id=:id OR b.seller_id=:id)`,
		`DELETE FROM orders WHERE buyer_id=:id OR book_id IN (SELECT id FROM books WHERE seller_id=:id)`,
		`DELETE FROM favorites WHERE user_id=:id OR book_id IN (SELECT id FROM books WHERE seller_id=:id)`,
		`DELETE FROM books WHERE seller_id=:id`,
		`DELETE FROM notifications WHERE user_id=:id`,
		`DELETE FROM support_tickets WHERE user_id=:id`,
	}
	arg := map[string]any{"id": id}
	for _, q := range stmts {
		if _, err := sqlx.NamedExecContext(ctx, r.db, q, arg); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	return affected(res, err, "user")
}
