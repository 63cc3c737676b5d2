package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/errs"
	"github.com/Astemirdum/library-checkout/checkout/internal/model"
)

type bookRow struct {
	BookID       uuid.UUID      `db:"book_id"`
	Title        string         `db:"title"`
	Author       string         `db:"author"`
	Isbn         string         `db:"isbn"`
	Description  string         `db:"description"`
	OwnerID      uuid.UUID      `db:"owner_id"`
	OwnerName    string         `db:"owner_name"`
	CheckoutID   uuid.NullUUID  `db:"checkout_id"`
	CheckedOutAt sql.NullTime   `db:"checked_out_at"`
	BorrowerID   uuid.NullUUID  `db:"borrower_id"`
	BorrowerName sql.NullString `db:"borrower_name"`
	Total        int            `db:"total"`
}

func (r bookRow) toModel() model.Book {
	b := model.Book{
		ID:          r.BookID,
		Title:       r.Title,
		Author:      r.Author,
		Isbn:        r.Isbn,
		Description: r.Description,
		Owner: model.BookOwner{
			ID:   r.OwnerID,
			Name: r.OwnerName,
		},
	}
	if r.CheckoutID.Valid {
		b.Checkout = &model.BookCheckout{
			ID: r.CheckoutID.UUID,
			CheckedOutBy: model.CheckoutUser{
				ID:   r.BorrowerID.UUID,
				Name: r.BorrowerName.String,
			},
			CheckedOutAt: r.CheckedOutAt.Time,
		}
	}
	return b
}

func bookSelect(columns ...string) sq.SelectBuilder {
	columns = append([]string{
		"b.book_id", "b.title", "b.author", "b.isbn", "b.description",
		"o.user_id AS owner_id", "o.name AS owner_name",
		"c.checkout_id", "c.checked_out_at",
		"cu.user_id AS borrower_id", "cu.name AS borrower_name",
	}, columns...)
	return qb.Select(columns...).
		From(booksTableName + " b").
		Join(usersTableName + " o ON o.user_id = b.user_id").
		LeftJoin(checkoutsTableName + " c ON c.book_id = b.book_id").
		LeftJoin(usersTableName + " cu ON cu.user_id = c.user_id")
}

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (uuid.UUID, error) {
	q, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "isbn", "description", "user_id").
		Values(req.Title, req.Author, req.Isbn, req.Description, req.OwnerID).
		Suffix("RETURNING book_id").
		ToSql()
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	if err := r.db.GetContext(ctx, &id, q, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return uuid.Nil, dbError(err, "insert book")
	}
	return id, nil
}

func (r *repository) GetBook(ctx context.Context, bookID uuid.UUID) (model.Book, error) {
	q, args, err := bookSelect().
		Where(sq.Eq{"b.book_id": bookID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var row bookRow
	if err := r.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errors.Wrapf(errs.ErrBookNotFound, "book %s", bookID)
		}
		return model.Book{}, errors.Wrap(err, "select book")
	}
	return row.toModel(), nil
}

func (r *repository) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	q := bookSelect("COUNT(*) OVER() AS total").
		OrderBy("b.created_at DESC")
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return model.ListBooks{}, errors.Wrap(err, "select books")
	}
	books := make([]model.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toModel())
	}
	total := 0
	if len(rows) > 0 {
		total = rows[0].Total
	}
	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: books,
	}, nil
}

// UpdateBook overwrites the descriptive fields of a book owned by userID.
func (r *repository) UpdateBook(ctx context.Context, bookID, userID uuid.UUID, req model.UpdateBookRequest) error {
	q, args, err := qb.Update(booksTableName).
		Set("title", req.Title).
		Set("author", req.Author).
		Set("isbn", req.Isbn).
		Set("description", req.Description).
		Where(sq.Eq{"book_id": bookID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		r.log.Error("UpdateBook", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return dbError(err, "update book")
	}
	return affected(res, "update book", errs.ErrBookNotFound)
}

type bookUsageRow struct {
	OwnerID    uuid.UUID `db:"user_id"`
	CheckedOut bool      `db:"checked_out"`
	HasHistory bool      `db:"has_history"`
}

const bookUsageQuery = `
	select b.user_id,
	       exists (select 1 from checkouts c where c.book_id = b.book_id) as checked_out,
	       exists (select 1 from returned_checkouts rc where rc.book_id = b.book_id) as has_history
	from books as b
	where b.book_id = $1`

// DeleteBook removes a book owned by userID. A book that is on loan or has
// returned loans stays: its checkout records reference it.
func (r *repository) DeleteBook(ctx context.Context, bookID, userID uuid.UUID) error {
	tx, err := r.begin(ctx, setSerializable)
	if err != nil {
		return err
	}
	defer r.rollback(tx)

	var usage bookUsageRow
	if err := tx.GetContext(ctx, &usage, bookUsageQuery, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(errs.ErrBookNotFound, "book %s", bookID)
		}
		return dbError(err, "book usage")
	}
	switch {
	case usage.OwnerID != userID:
		return errors.Wrapf(errs.ErrBookNotFound, "book %s, owner %s", bookID, userID)
	case usage.CheckedOut:
		return errors.Wrapf(errs.ErrAlreadyCheckedOut, "book %s", bookID)
	case usage.HasHistory:
		return errors.Wrapf(errs.ErrBookHasHistory, "book %s", bookID)
	}

	q, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"book_id": bookID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return deleteBookError(err)
	}
	if err := affected(res, "delete book", errs.ErrBookNotFound); err != nil {
		return err
	}
	return r.commit(tx)
}

// deleteBookError maps a restrict violation raised by the delete itself to
// the record that still references the book.
func deleteBookError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		switch pgErr.ConstraintName {
		case checkoutsBookFKey:
			return errors.Wrap(errs.ErrAlreadyCheckedOut, "delete book")
		case returnedCheckoutsBookFKey:
			return errors.Wrap(errs.ErrBookHasHistory, "delete book")
		}
	}
	return dbError(err, "delete book")
}
