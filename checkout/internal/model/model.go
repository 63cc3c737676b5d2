package model

import (
	"time"

	"github.com/google/uuid"
)

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type Book struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Author      string        `json:"author"`
	Isbn        string        `json:"isbn"`
	Description string        `json:"description"`
	Owner       BookOwner     `json:"owner"`
	Checkout    *BookCheckout `json:"checkout"`
}

type BookOwner struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookCheckout is the active loan attached to a catalog entry.
type BookCheckout struct {
	ID           uuid.UUID    `json:"id"`
	CheckedOutBy CheckoutUser `json:"checkedOutBy"`
	CheckedOutAt time.Time    `json:"checkedOutAt"`
}

type CreateBookRequest struct {
	Title       string    `json:"title" validate:"required,max=256"`
	Author      string    `json:"author" validate:"required,max=256"`
	Isbn        string    `json:"isbn" validate:"required,max=32"`
	Description string    `json:"description" validate:"max=4096"`
	OwnerID     uuid.UUID `json:"-"`
}

// UpdateBookRequest replaces the descriptive fields of a book.
type UpdateBookRequest struct {
	Title       string `json:"title" validate:"required,max=256"`
	Author      string `json:"author" validate:"required,max=256"`
	Isbn        string `json:"isbn" validate:"required,max=32"`
	Description string `json:"description" validate:"max=4096"`
}

type User struct {
	ID   uuid.UUID `json:"id" db:"user_id"`
	Name string    `json:"name" db:"name"`
}

type CreateUserRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// Checkout is a loan record, active when ReturnedAt is nil.
type Checkout struct {
	ID           uuid.UUID    `json:"id"`
	CheckedOutBy CheckoutUser `json:"checkedOutBy"`
	CheckedOutAt time.Time    `json:"checkedOutAt"`
	ReturnedAt   *time.Time   `json:"returnedAt"`
	Book         CheckoutBook `json:"book"`
}

func (c Checkout) IsReturned() bool {
	return c.ReturnedAt != nil
}

type CheckoutUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CheckoutBook struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Isbn   string    `json:"isbn"`
}

type Checkouts struct {
	Items []Checkout `json:"items"`
}

type CreateCheckout struct {
	BookID       uuid.UUID
	CheckedOutBy uuid.UUID
	CheckedOutAt time.Time
}

type UpdateReturned struct {
	CheckoutID uuid.UUID
	BookID     uuid.UUID
	ReturnedBy uuid.UUID
	ReturnedAt time.Time
}

type CreateCheckoutResponse struct {
	CheckoutID uuid.UUID `json:"checkoutId"`
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}
