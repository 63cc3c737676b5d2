package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/Astemirdum/library-checkout/checkout/internal/model"
	"github.com/Astemirdum/library-checkout/checkout/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CheckoutService interface {
	CreateCheckout(ctx context.Context, bookID, userID uuid.UUID) (uuid.UUID, error)
	ReturnCheckout(ctx context.Context, bookID, checkoutID, userID uuid.UUID) error
	ListUnreturned(ctx context.Context) (model.Checkouts, error)
	ListUnreturnedByUser(ctx context.Context, userID uuid.UUID) (model.Checkouts, error)
	History(ctx context.Context, bookID uuid.UUID) (model.Checkouts, error)
}

type CatalogService interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (uuid.UUID, error)
	GetBook(ctx context.Context, bookID uuid.UUID) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	UpdateBook(ctx context.Context, bookID, userID uuid.UUID, req model.UpdateBookRequest) error
	DeleteBook(ctx context.Context, bookID, userID uuid.UUID) error
	CreateUser(ctx context.Context, req model.CreateUserRequest) (uuid.UUID, error)
	GetUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

var (
	_ CheckoutService = (*service.Service)(nil)
	_ CatalogService  = (*service.Catalog)(nil)
)
