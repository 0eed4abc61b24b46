package services_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmarket/internal/domain"
	"bookmarket/internal/repos"
	"bookmarket/internal/services"
)

func TestSellerCreateStartsPendingAndHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := bookInput("Algo", 50)
	in.IsApproved = true
	in.Status = domain.BookAvailable
	b, err := f.catalog.CreateForSeller(ctx, f.seller, in)
	require.NoError(t, err)
	assert.False(t, b.IsApproved)
	assert.Equal(t, domain.BookPending, b.Status)
	assert.Equal(t, f.seller.ID, b.SellerID)
	assert.Equal(t, "seller", b.SellerName)

	list, err := f.catalog.ListBooks(ctx, f.buyer, repos.BookFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.catalog.GetBook(ctx, f.buyer, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// owner and admin still see it
	_, err = f.catalog.GetBook(ctx, f.seller, b.ID)
	assert.NoError(t, err)
	all, err := f.catalog.ListBooks(ctx, f.admin, repos.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBuyerCannotUseInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateForSeller(ctx, f.buyer, bookInput("Nope", 10))
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = f.catalog.Inventory(ctx, f.buyer)
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateForSeller(ctx, f.seller, bookInput("Free", 0))
	assert.ErrorIs(t, err, domain.ErrValidation)

	in := bookInput("", 10)
	_, err = f.catalog.CreateForSeller(ctx, f.seller, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in = bookInput("Bad Cat", 10)
	missing := "no-such-category"
	in.CategoryID = &missing
	_, err = f.catalog.CreateForSeller(ctx, f.seller, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdminCreateNormalizesAndNeedsSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := bookInput("Direct", 12)
	_, err := f.catalog.AdminCreate(ctx, f.admin, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	in.SellerID = f.seller.ID
	in.IsApproved = true
	b, err := f.catalog.AdminCreate(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, domain.BookAvailable, b.Status)

	in.IsApproved = false
	in.Status = domain.BookAvailable
	b, err = f.catalog.AdminCreate(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, domain.BookPending, b.Status)

	_, err = f.catalog.AdminCreate(ctx, f.seller, in)
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestApproveAndRejectNotifySeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.listedBook(t, "Algo", 50)
	assert.True(t, b.IsApproved)
	assert.Equal(t, domain.BookAvailable, b.Status)

	rejected, err := f.catalog.Reject(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)
	assert.Equal(t, domain.BookPending, rejected.Status)

	inbox := f.inbox(t, f.seller)
	require.Len(t, inbox, 2)
	assert.Contains(t, inbox[0].Message, "Algo")
	assert.Contains(t, inbox[1].Message, "Algo")

	_, err = f.catalog.Approve(ctx, f.seller, b.ID)
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestSellerEditSendsBookBackToReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.listedBook(t, "Algo", 50)

	price := decimal.RequireFromString("42.5")
	approved := true
	got, err := f.catalog.Update(ctx, f.seller, b.ID, services.BookPatch{Price: &price, IsApproved: &approved})
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price))
	assert.False(t, got.IsApproved)
	assert.Equal(t, domain.BookPending, got.Status)
}

func TestAdminEditKeepsApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.listedBook(t, "Algo", 50)

	title := "Algorithms"
	got, err := f.catalog.Update(ctx, f.admin, b.ID, services.BookPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", got.Title)
	assert.True(t, got.IsApproved)
	assert.Equal(t, domain.BookAvailable, got.Status)

	// unapproving an available book drags it back to pending
	approved := false
	got, err = f.catalog.Update(ctx, f.admin, b.ID, services.BookPatch{IsApproved: &approved})
	require.NoError(t, err)
	assert.Equal(t, domain.BookPending, got.Status)

	sold := domain.BookSold
	_, err = f.catalog.Update(ctx, f.admin, b.ID, services.BookPatch{Status: &sold})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOthersCannotEditOrDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listed := f.listedBook(t, "Listed", 20)
	hidden, err := f.catalog.CreateForSeller(ctx, f.seller, bookInput("Hidden", 20))
	require.NoError(t, err)

	title := "Mine now"
	_, err = f.catalog.Update(ctx, f.buyer, listed.ID, services.BookPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = f.catalog.Update(ctx, f.buyer, hidden.ID, services.BookPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.catalog.DeleteBook(ctx, f.buyer, listed.ID), domain.ErrPermission)

	require.NoError(t, f.catalog.DeleteBook(ctx, f.seller, hidden.ID))
	_, err = f.catalog.GetBook(ctx, f.admin, hidden.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCategoryDetachesBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateCategory(ctx, f.seller, services.CategoryInput{Name: "Poetry"})
	assert.ErrorIs(t, err, domain.ErrPermission)

	cat, err := f.catalog.CreateCategory(ctx, f.admin, services.CategoryInput{Name: "  Poetry "})
	require.NoError(t, err)
	assert.Equal(t, "Poetry", cat.Name)

	in := bookInput("Odes", 9)
	in.CategoryID = &cat.ID
	b, err := f.catalog.CreateForSeller(ctx, f.seller, in)
	require.NoError(t, err)
	require.NotNil(t, b.CategoryName)
	assert.Equal(t, "Poetry", *b.CategoryName)

	renamed, err := f.catalog.RenameCategory(ctx, f.admin, cat.ID, services.CategoryInput{Name: "Verse"})
	require.NoError(t, err)
	assert.Equal(t, "Verse", renamed.Name)

	require.NoError(t, f.catalog.DeleteCategory(ctx, f.admin, cat.ID))
	got, err := f.catalog.GetBook(ctx, f.seller, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	_, err = f.catalog.GetCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSetCoverStoresImageAndResetsApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.listedBook(t, "Algo", 50)

	got, err := f.catalog.SetCover(ctx, f.seller, b.ID, bytes.NewReader(pngBytes(t, 40, 30)))
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.True(t, strings.HasPrefix(*got.Image, "/media/covers/"))
	assert.False(t, got.IsApproved)

	key := strings.TrimPrefix(*got.Image, "/media/")
	_, err = os.Stat(filepath.Join(f.mediaDir, filepath.FromSlash(key)))
	assert.NoError(t, err)

	_, err = f.catalog.SetCover(ctx, f.seller, b.ID, strings.NewReader("not an image"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListBooksFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.listedBook(t, "Dune", 30)
	f.listedBook(t, "Foundation", 12)
	in := bookInput("Dune Messiah", 25)
	in.Condition = domain.ConditionNew
	_, err := f.catalog.CreateForSeller(ctx, f.seller, in)
	require.NoError(t, err)

	got, err := f.catalog.ListBooks(ctx, f.buyer, repos.BookFilter{Search: "dune"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0].Title)

	got, err = f.catalog.ListBooks(ctx, f.admin, repos.BookFilter{Search: "DUNE", Ordering: "title"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dune Messiah", got[1].Title)

	lo := decimal.NewFromInt(20)
	got, err = f.catalog.ListBooks(ctx, f.admin, repos.BookFilter{MinPrice: &lo, Ordering: "-price"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dune", got[0].Title)

	got, err = f.catalog.ListBooks(ctx, f.admin, repos.BookFilter{Condition: domain.ConditionNew})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.BookPending, got[0].Status)
}
