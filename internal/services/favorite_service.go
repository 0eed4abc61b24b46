package services

import (
	"context"
	"time"

	"bookmarket/internal/domain"
	"bookmarket/internal/repos"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FavoriteService struct {
	DB *sqlx.DB
}

func NewFavoriteService(db *sqlx.DB) *FavoriteService { return &FavoriteService{DB: db} }

// SavedBook is a favorite together with the book it points at.
type SavedBook struct {
	domain.Favorite
	Book domain.Book `json:"book_details"`
}

var errDuplicateFavorite = domain.Validation("non_field_errors", "This book is already in your favorites.")

// Add saves a book for the caller. Each (user, book) pair is stored once.
func (s *FavoriteService) Add(ctx context.Context, actor domain.Principal, bookID string) (SavedBook, error) {
	if bookID == "" {
		return SavedBook{}, domain.Validation("book", "This field is required.")
	}
	var out SavedBook
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		b, err := repos.NewBookRepo(tx).Get(ctx, bookID)
		if err != nil {
			return asField(err, "book", "Invalid book.")
		}
		if !b.Visible() && !canManage(actor, b) {
			return domain.Validation("book", "Invalid book.")
		}
		favs := repos.NewFavoriteRepo(tx)
		dup, err := favs.Exists(ctx, actor.ID, bookID)
		if err != nil {
			return err
		}
		if dup {
			return errDuplicateFavorite
		}
		f := domain.Favorite{ID: uuid.NewString(), UserID: actor.ID, BookID: bookID, CreatedAt: time.Now().UTC()}
		if err := favs.Add(ctx, &f); err != nil {
			if repos.IsUniqueViolation(err) {
				return errDuplicateFavorite
			}
			return err
		}
		out = SavedBook{Favorite: f, Book: b}
		return nil
	})
	return out, err
}

func (s *FavoriteService) List(ctx context.Context, actor domain.Principal) ([]SavedBook, error) {
	favs, err := repos.NewFavoriteRepo(s.DB).ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	books := repos.NewBookRepo(s.DB)
	out := make([]SavedBook, 0, len(favs))
	for _, f := range favs {
		b, err := books.Get(ctx, f.BookID)
		if err != nil {
			return nil, err
		}
		out = append(out, SavedBook{Favorite: f, Book: b})
	}
	return out, nil
}

func (s *FavoriteService) own(ctx context.Context, actor domain.Principal, id string) (domain.Favorite, error) {
	f, err := repos.NewFavoriteRepo(s.DB).Get(ctx, id)
	if err != nil {
		return f, err
	}
	if f.UserID != actor.ID {
		return domain.Favorite{}, domain.NotFound("favorite")
	}
	return f, nil
}

func (s *FavoriteService) Get(ctx context.Context, actor domain.Principal, id string) (SavedBook, error) {
	f, err := s.own(ctx, actor, id)
	if err != nil {
		return SavedBook{}, err
	}
	b, err := repos.NewBookRepo(s.DB).Get(ctx, f.BookID)
	if err != nil {
		return SavedBook{}, err
	}
	return SavedBook{Favorite: f, Book: b}, nil
}

func (s *FavoriteService) Remove(ctx context.Context, actor domain.Principal, id string) error {
	if _, err := s.own(ctx, actor, id); err != nil {
		return err
	}
	return repos.NewFavoriteRepo(s.DB).Delete(ctx, id)
}
