package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/model"
	"github.com/Astemirdum/library-checkout/checkout/internal/repository"
)

// Catalog serves books and users. None of it touches checkout state.
type Catalog struct {
	log   *zap.Logger
	books repository.BookRepository
	users repository.UserRepository
}

func NewCatalog(books repository.BookRepository, users repository.UserRepository, log *zap.Logger) *Catalog {
	return &Catalog{
		log:   log.Named("catalog"),
		books: books,
		users: users,
	}
}

func (c *Catalog) CreateBook(ctx context.Context, req model.CreateBookRequest) (uuid.UUID, error) {
	bookID, err := c.books.CreateBook(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}
	c.log.Debug("book created", zap.Stringer("book_id", bookID), zap.Stringer("owner_id", req.OwnerID))
	return bookID, nil
}

func (c *Catalog) GetBook(ctx context.Context, bookID uuid.UUID) (model.Book, error) {
	return c.books.GetBook(ctx, bookID)
}

func (c *Catalog) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	books, err := c.books.ListBooks(ctx, page, size)
	if err != nil {
		return model.ListBooks{}, err
	}
	if books.Items == nil {
		books.Items = []model.Book{}
	}
	return books, nil
}

func (c *Catalog) UpdateBook(ctx context.Context, bookID, userID uuid.UUID, req model.UpdateBookRequest) error {
	if err := c.books.UpdateBook(ctx, bookID, userID, req); err != nil {
		return err
	}
	c.log.Debug("book updated", zap.Stringer("book_id", bookID))
	return nil
}

func (c *Catalog) DeleteBook(ctx context.Context, bookID, userID uuid.UUID) error {
	if err := c.books.DeleteBook(ctx, bookID, userID); err != nil {
		return err
	}
	c.log.Debug("book deleted", zap.Stringer("book_id", bookID))
	return nil
}

func (c *Catalog) CreateUser(ctx context.Context, req model.CreateUserRequest) (uuid.UUID, error) {
	return c.users.CreateUser(ctx, req)
}

func (c *Catalog) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	return c.users.GetUser(ctx, userID)
}
