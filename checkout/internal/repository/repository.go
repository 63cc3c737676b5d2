package repository

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/errs"
	"github.com/Astemirdum/library-checkout/checkout/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

// CheckoutRepository owns every write to checkouts and returned_checkouts.
type CheckoutRepository interface {
	Create(ctx context.Context, event model.CreateCheckout) (uuid.UUID, error)
	UpdateReturned(ctx context.Context, event model.UpdateReturned) error
	FindUnreturnedAll(ctx context.Context) ([]model.Checkout, error)
	FindUnreturnedByUserID(ctx context.Context, userID uuid.UUID) ([]model.Checkout, error)
	FindHistoryByBookID(ctx context.Context, bookID uuid.UUID) ([]model.Checkout, error)
}

type BookRepository interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (uuid.UUID, error)
	GetBook(ctx context.Context, bookID uuid.UUID) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	UpdateBook(ctx context.Context, bookID, userID uuid.UUID, req model.UpdateBookRequest) error
	DeleteBook(ctx context.Context, bookID, userID uuid.UUID) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (uuid.UUID, error)
	GetUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

type Repository interface {
	CheckoutRepository
	BookRepository
	UserRepository
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

var _ Repository = (*repository)(nil)

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName             = `books`
	usersTableName             = `users`
	checkoutsTableName         = `checkouts`
	returnedCheckoutsTableName = `returned_checkouts`

	activeCheckoutBookKey     = `checkouts_book_id_key`
	checkoutsBookFKey         = `checkouts_book_id_fkey`
	returnedCheckoutsBookFKey = `returned_checkouts_book_id_fkey`
)

const (
	setSerializable = `SET TRANSACTION ISOLATION LEVEL SERIALIZABLE`
	setSnapshotRead = `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ, READ ONLY`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// begin opens a transaction and sets its characteristics before any other
// statement runs in it. The caller must defer rollback.
func (r *repository) begin(ctx context.Context, characteristics string) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errs.Transaction(errors.Wrap(err, "begin"), false)
	}
	if _, err := tx.ExecContext(ctx, characteristics); err != nil {
		r.rollback(tx)
		return nil, dbError(err, "set transaction")
	}
	return tx, nil
}

func (r *repository) rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.log.Error("rollback", zap.Error(err))
	}
}

func (r *repository) commit(tx *sqlx.Tx) error {
	if err := tx.Commit(); err != nil {
		return errs.Transaction(errors.Wrap(err, "commit"), isRetryable(err))
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// dbError classifies a failed statement by SQLSTATE.
func dbError(err error, step string) error {
	if isRetryable(err) {
		return errs.Transaction(errors.Wrap(err, step), true)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == activeCheckoutBookKey {
				return errors.Wrap(errs.ErrAlreadyCheckedOut, step)
			}
		case pgerrcode.ForeignKeyViolation:
			switch {
			case strings.HasSuffix(pgErr.ConstraintName, "user_id_fkey"):
				return errors.Wrap(errs.ErrUserNotFound, step)
			case strings.HasSuffix(pgErr.ConstraintName, "book_id_fkey"):
				return errors.Wrap(errs.ErrBookNotFound, step)
			}
		}
	}
	return errors.Wrap(err, step)
}

// affected turns a write that touched no rows into none.
func affected(res sql.Result, step string, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, step)
	}
	if n < 1 {
		return errors.Wrap(none, step)
	}
	return nil
}
