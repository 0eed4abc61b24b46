package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{Validation("title", "required"), ErrValidation},
		{Forbidden("no"), ErrPermission},
		{NotFound("book"), ErrNotFound},
		{Conflict("raced"), ErrConflict},
		{Unauthenticated("who"), ErrUnauthenticated},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("service: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.want), tc.err.Error())
		assert.False(t, errors.Is(tc.err, errors.New("other")))
	}
	assert.Equal(t, "title: required", Validation("title", "required").Error())
	assert.Equal(t, "book not found", NotFound("book").Error())
}

func TestNormalize(t *testing.T) {
	b := Book{IsApproved: true, Status: BookPending}
	b.Normalize()
	assert.Equal(t, BookAvailable, b.Status)

	b = Book{IsApproved: false, Status: BookAvailable}
	b.Normalize()
	assert.Equal(t, BookPending, b.Status)

	b = Book{IsApproved: true, Status: BookSold}
	b.Normalize()
	assert.Equal(t, BookSold, b.Status)
	assert.True(t, b.Visible())

	b.ResetApproval()
	assert.False(t, b.IsApproved)
	assert.Equal(t, BookPending, b.Status)
	assert.False(t, b.Visible())
}

func TestPrincipal(t *testing.T) {
	assert.True(t, Principal{Role: RoleAdmin}.IsAdmin())
	assert.True(t, Principal{Role: RoleBuyer, IsStaff: true}.IsAdmin())
	assert.True(t, Principal{Role: RoleSeller}.CanSell())
	assert.False(t, Principal{Role: RoleBuyer}.CanSell())
	assert.False(t, Role("king").Valid())
}
