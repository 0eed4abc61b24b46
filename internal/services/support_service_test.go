package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmarket/internal/domain"
	"bookmarket/internal/services"
)

func openTicket(t *testing.T, f *fixture) domain.SupportTicket {
	t.Helper()
	tk, err := f.support.Open(context.Background(), f.buyer, services.TicketInput{Subject: domain.SubjectPayment, Message: "Charged twice"})
	require.NoError(t, err)
	return tk
}

func TestEmptyReplyLeavesTicketOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := openTicket(t, f)

	_, err := f.support.Reply(ctx, f.admin, tk.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.support.Get(ctx, f.buyer, tk.ID)
	require.NoError(t, err)
	assert.False(t, got.IsResolved)
	assert.Nil(t, got.AdminReply)
	assert.Empty(t, f.inbox(t, f.buyer))
}

func TestReplyResolvesAndNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := openTicket(t, f)
	assert.Equal(t, "buyer", tk.Username)

	_, err := f.support.Reply(ctx, f.seller, tk.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrPermission)

	got, err := f.support.Reply(ctx, f.admin, tk.ID, "Refund issued")
	require.NoError(t, err)
	assert.True(t, got.IsResolved)
	require.NotNil(t, got.AdminReply)
	assert.Equal(t, "Refund issued", *got.AdminReply)

	inbox := f.inbox(t, f.buyer)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Admin has replied to your ticket regarding: Payment Problem", inbox[0].Message)
}

func TestTicketsAreScopedToOpener(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := openTicket(t, f)

	_, err := f.support.Get(ctx, f.other, tk.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mine, err := f.support.List(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, mine)
	all, err := f.support.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.support.Open(ctx, f.buyer, services.TicketInput{Subject: "complaint", Message: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	resolved := true
	got, err := f.support.Patch(ctx, f.admin, tk.ID, services.TicketPatch{IsResolved: &resolved})
	require.NoError(t, err)
	assert.True(t, got.IsResolved)
	assert.Empty(t, f.inbox(t, f.buyer))

	assert.ErrorIs(t, f.support.Close(ctx, f.other, tk.ID), domain.ErrNotFound)
	require.NoError(t, f.support.Close(ctx, f.buyer, tk.ID))
}
