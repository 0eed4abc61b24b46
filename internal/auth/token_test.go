package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndSubject(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	tok, exp, err := tokens.Issue("user-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	sub, err := tokens.Subject(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestSubjectRejectsForeignSecret(t *testing.T) {
	tok, _, err := NewTokens("one", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Subject(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestSubjectRejectsExpired(t *testing.T) {
	tokens := NewTokens("s3cret", -time.Hour)
	tok, _, err := tokens.Issue("user-1")
	require.NoError(t, err)

	_, err = tokens.Subject(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}
