package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/errs"
	"github.com/Astemirdum/library-checkout/checkout/internal/model"
)

type checkoutStateRow struct {
	BookID     uuid.UUID     `db:"book_id"`
	CheckoutID uuid.NullUUID `db:"checkout_id"`
	UserID     uuid.NullUUID `db:"user_id"`
}

type checkoutRow struct {
	CheckoutID   uuid.UUID    `db:"checkout_id"`
	BookID       uuid.UUID    `db:"book_id"`
	UserID       uuid.UUID    `db:"user_id"`
	UserName     string       `db:"user_name"`
	CheckedOutAt time.Time    `db:"checked_out_at"`
	ReturnedAt   sql.NullTime `db:"returned_at"`
	Title        string       `db:"title"`
	Author       string       `db:"author"`
	Isbn         string       `db:"isbn"`
}

func (r checkoutRow) toModel() model.Checkout {
	c := model.Checkout{
		ID: r.CheckoutID,
		CheckedOutBy: model.CheckoutUser{
			ID:   r.UserID,
			Name: r.UserName,
		},
		CheckedOutAt: r.CheckedOutAt,
		Book: model.CheckoutBook{
			ID:     r.BookID,
			Title:  r.Title,
			Author: r.Author,
			Isbn:   r.Isbn,
		},
	}
	if r.ReturnedAt.Valid {
		returnedAt := r.ReturnedAt.Time
		c.ReturnedAt = &returnedAt
	}
	return c
}

func toCheckouts(rows []checkoutRow) []model.Checkout {
	items := make([]model.Checkout, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items
}

const (
	checkoutStateQuery = `
	select b.book_id, c.checkout_id, c.user_id
	from books as b
	left outer join checkouts as c using (book_id)
	where b.book_id = $1`

	insertCheckoutQuery = `
	insert into checkouts (checkout_id, book_id, user_id, checked_out_at)
	values ($1, $2, $3, $4)`

	insertReturnedQuery = `
	insert into returned_checkouts (checkout_id, book_id, user_id, checked_out_at, returned_at)
	select checkout_id, book_id, user_id, checked_out_at, greatest($2::timestamptz, checked_out_at)
	from checkouts
	where checkout_id = $1`

	deleteCheckoutQuery = `delete from checkouts where checkout_id = $1`

	alreadyReturnedQuery = `
	select exists (select 1 from returned_checkouts where checkout_id = $1 and book_id = $2)`

	bookExistsQuery = `select exists (select 1 from books where book_id = $1)`
)

// Create registers a loan. The state read and the insert share one
// serializable transaction, so two concurrent loans of the same book cannot
// both commit.
func (r *repository) Create(ctx context.Context, event model.CreateCheckout) (uuid.UUID, error) {
	tx, err := r.begin(ctx, setSerializable)
	if err != nil {
		return uuid.Nil, err
	}
	defer r.rollback(tx)

	state, err := r.checkoutState(ctx, tx, event.BookID)
	if err != nil {
		return uuid.Nil, err
	}
	if state.CheckoutID.Valid {
		return uuid.Nil, errors.Wrapf(errs.ErrAlreadyCheckedOut, "book %s", event.BookID)
	}

	checkoutID := uuid.New()
	res, err := tx.ExecContext(ctx, insertCheckoutQuery, checkoutID, event.BookID, event.CheckedOutBy, event.CheckedOutAt)
	if err != nil {
		r.log.Error("Create", zap.String("q", insertCheckoutQuery), zap.Error(err))
		return uuid.Nil, dbError(err, "insert checkout")
	}
	if err := affected(res, "insert checkout", errs.ErrCheckoutNotCreated); err != nil {
		return uuid.Nil, err
	}

	if err := r.commit(tx); err != nil {
		return uuid.Nil, err
	}
	return checkoutID, nil
}

// UpdateReturned moves the active loan into the returned history. The insert
// and the delete must both touch a row or nothing is committed.
func (r *repository) UpdateReturned(ctx context.Context, event model.UpdateReturned) error {
	tx, err := r.begin(ctx, setSerializable)
	if err != nil {
		return err
	}
	defer r.rollback(tx)

	state, err := r.checkoutState(ctx, tx, event.BookID)
	if err != nil {
		return err
	}
	if !state.CheckoutID.Valid ||
		state.CheckoutID.UUID != event.CheckoutID ||
		state.UserID.UUID != event.ReturnedBy {
		return r.rejectReturn(ctx, tx, event)
	}

	res, err := tx.ExecContext(ctx, insertReturnedQuery, event.CheckoutID, event.ReturnedAt)
	if err != nil {
		r.log.Error("UpdateReturned", zap.String("q", insertReturnedQuery), zap.Error(err))
		return dbError(err, "insert returned checkout")
	}
	if err := affected(res, "insert returned checkout", errs.ErrReturnNotRecorded); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx, deleteCheckoutQuery, event.CheckoutID)
	if err != nil {
		r.log.Error("UpdateReturned", zap.String("q", deleteCheckoutQuery), zap.Error(err))
		return dbError(err, "delete checkout")
	}
	if err := affected(res, "delete checkout", errs.ErrCheckoutNotDeleted); err != nil {
		return err
	}

	return r.commit(tx)
}

func (r *repository) checkoutState(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) (checkoutStateRow, error) {
	var state checkoutStateRow
	if err := tx.GetContext(ctx, &state, checkoutStateQuery, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return checkoutStateRow{}, errors.Wrapf(errs.ErrBookNotFound, "book %s", bookID)
		}
		return checkoutStateRow{}, dbError(err, "checkout state")
	}
	return state, nil
}

// rejectReturn tells a resubmitted return apart from a return that never
// matched the active loan. Both are conflicts.
func (r *repository) rejectReturn(ctx context.Context, tx *sqlx.Tx, event model.UpdateReturned) error {
	var returned bool
	if err := tx.GetContext(ctx, &returned, alreadyReturnedQuery, event.CheckoutID, event.BookID); err != nil {
		return dbError(err, "returned checkout lookup")
	}
	if returned {
		return errors.Wrapf(errs.ErrAlreadyReturned, "checkout %s", event.CheckoutID)
	}
	return errors.Wrapf(errs.ErrReturnMismatch, "checkout %s, user %s, book %s",
		event.CheckoutID, event.ReturnedBy, event.BookID)
}

func unreturnedSelect() sq.SelectBuilder {
	return qb.Select("c.checkout_id", "c.book_id", "c.user_id", "u.name AS user_name", "c.checked_out_at",
		"b.title", "b.author", "b.isbn").
		From(checkoutsTableName + " c").
		Join(booksTableName + " b ON b.book_id = c.book_id").
		Join(usersTableName + " u ON u.user_id = c.user_id")
}

func returnedSelect() sq.SelectBuilder {
	return qb.Select("rc.checkout_id", "rc.book_id", "rc.user_id", "u.name AS user_name", "rc.checked_out_at",
		"rc.returned_at", "b.title", "b.author", "b.isbn").
		From(returnedCheckoutsTableName + " rc").
		Join(booksTableName + " b ON b.book_id = rc.book_id").
		Join(usersTableName + " u ON u.user_id = rc.user_id")
}

func (r *repository) FindUnreturnedAll(ctx context.Context) ([]model.Checkout, error) {
	return r.findUnreturned(ctx, nil)
}

func (r *repository) FindUnreturnedByUserID(ctx context.Context, userID uuid.UUID) ([]model.Checkout, error) {
	return r.findUnreturned(ctx, sq.Eq{"c.user_id": userID})
}

func (r *repository) findUnreturned(ctx context.Context, pred sq.Sqlizer) ([]model.Checkout, error) {
	q := unreturnedSelect()
	if pred != nil {
		q = q.Where(pred)
	}
	query, args, err := q.OrderBy("c.checked_out_at ASC").ToSql()
	if err != nil {
		return nil, err
	}
	var rows []checkoutRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.Error("findUnreturned", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return nil, errors.Wrap(err, "select unreturned")
	}
	return toCheckouts(rows), nil
}

// FindHistoryByBookID reads the live loan and the returned loans of a book
// from one snapshot.
func (r *repository) FindHistoryByBookID(ctx context.Context, bookID uuid.UUID) ([]model.Checkout, error) {
	tx, err := r.begin(ctx, setSnapshotRead)
	if err != nil {
		return nil, err
	}
	defer r.rollback(tx)

	var exists bool
	if err := tx.GetContext(ctx, &exists, bookExistsQuery, bookID); err != nil {
		return nil, dbError(err, "book lookup")
	}
	if !exists {
		return nil, errors.Wrapf(errs.ErrBookNotFound, "book %s", bookID)
	}

	query, args, err := unreturnedSelect().Where(sq.Eq{"c.book_id": bookID}).ToSql()
	if err != nil {
		return nil, err
	}
	var active []checkoutRow
	if err := tx.SelectContext(ctx, &active, query, args...); err != nil {
		return nil, dbError(err, "select active checkout")
	}

	query, args, err = returnedSelect().
		Where(sq.Eq{"rc.book_id": bookID}).
		OrderBy("rc.returned_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var returned []checkoutRow
	if err := tx.SelectContext(ctx, &returned, query, args...); err != nil {
		return nil, dbError(err, "select returned checkouts")
	}

	if err := r.commit(tx); err != nil {
		return nil, err
	}

	var current *model.Checkout
	if len(active) > 0 {
		c := active[0].toModel()
		current = &c
	}
	return mergeHistory(current, toCheckouts(returned)), nil
}
