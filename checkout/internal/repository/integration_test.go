package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-checkout/checkout/internal/errs"
	"github.com/Astemirdum/library-checkout/checkout/internal/model"
	"github.com/Astemirdum/library-checkout/checkout/internal/repository"
	"github.com/Astemirdum/library-checkout/checkout/migrations"
	"github.com/Astemirdum/library-checkout/pkg/postgres"
)

type fixture struct {
	repo  repository.Repository
	users []uuid.UUID
	book  uuid.UUID
}

func newFixture(t *testing.T, users int) fixture {
	t.Helper()
	dsn := os.Getenv("CHECKOUT_TEST_DSN")
	if dsn == "" {
		t.Skip("CHECKOUT_TEST_DSN is not set")
	}
	ctx := context.Background()

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, postgres.Migrate(db, migrations.MigrationFiles))

	repo, err := repository.NewRepository(db, zap.NewNop())
	require.NoError(t, err)

	f := fixture{repo: repo}
	for i := 0; i < users; i++ {
		id, err := repo.CreateUser(ctx, model.CreateUserRequest{Name: "U" + uuid.NewString()[:8]})
		require.NoError(t, err)
		f.users = append(f.users, id)
	}
	t.Cleanup(func() {
		for _, q := range []string{
			`delete from returned_checkouts where user_id = $1`,
			`delete from checkouts where user_id = $1`,
			`delete from books where user_id = $1`,
			`delete from users where user_id = $1`,
		} {
			for _, id := range f.users {
				_, _ = db.Exec(q, id)
			}
		}
	})

	f.book, err = repo.CreateBook(ctx, model.CreateBookRequest{
		Title:   "Dune",
		Author:  "Frank Herbert",
		Isbn:    "9780441013593",
		OwnerID: f.users[0],
	})
	require.NoError(t, err)
	return f
}

func TestIntegration_ConcurrentCheckouts(t *testing.T) {
	const contenders = 8
	f := newFixture(t, contenders)
	ctx := context.Background()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results []error
	)
	start := make(chan struct{})
	for _, userID := range f.users {
		userID := userID
		g.Go(func() error {
			<-start
			_, err := f.repo.Create(ctx, model.CreateCheckout{
				BookID:       f.book,
				CheckedOutBy: userID,
				CheckedOutAt: time.Now().UTC(),
			})
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	requireOneWinner(t, results)
	require.Equal(t, 1, f.active(t))
}

func TestIntegration_ConcurrentReturns(t *testing.T) {
	const contenders = 8
	f := newFixture(t, 1)
	ctx := context.Background()
	checkedOutAt := time.Now().UTC().Truncate(time.Microsecond)

	checkoutID, err := f.repo.Create(ctx, model.CreateCheckout{BookID: f.book, CheckedOutBy: f.users[0], CheckedOutAt: checkedOutAt})
	require.NoError(t, err)

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results []error
	)
	start := make(chan struct{})
	for i := 0; i < contenders; i++ {
		g.Go(func() error {
			<-start
			err := f.repo.UpdateReturned(ctx, model.UpdateReturned{
				CheckoutID: checkoutID,
				BookID:     f.book,
				ReturnedBy: f.users[0],
				ReturnedAt: checkedOutAt.Add(time.Minute),
			})
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	requireOneWinner(t, results)
	require.Zero(t, f.active(t))

	history, err := f.repo.FindHistoryByBookID(ctx, f.book)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, checkoutID, history[0].ID)
}

func requireOneWinner(t *testing.T, results []error) {
	t.Helper()
	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		require.True(t, errors.Is(err, errs.ErrConflict) || errs.IsRetryable(err), "unexpected error: %v", err)
	}
	require.Equal(t, 1, successes)
}

// active counts the unreturned loans of the fixture book.
func (f fixture) active(t *testing.T) int {
	t.Helper()
	unreturned, err := f.repo.FindUnreturnedAll(context.Background())
	require.NoError(t, err)
	n := 0
	for _, c := range unreturned {
		if c.Book.ID == f.book {
			n++
		}
	}
	return n
}

func TestIntegration_LoanLifecycle(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	u1, u2 := f.users[0], f.users[1]
	t1 := time.Now().UTC().Truncate(time.Microsecond)

	first, err := f.repo.Create(ctx, model.CreateCheckout{BookID: f.book, CheckedOutBy: u1, CheckedOutAt: t1})
	require.NoError(t, err)

	_, err = f.repo.Create(ctx, model.CreateCheckout{BookID: f.book, CheckedOutBy: u2, CheckedOutAt: t1})
	require.ErrorIs(t, err, errs.ErrAlreadyCheckedOut)

	err = f.repo.UpdateReturned(ctx, model.UpdateReturned{CheckoutID: first, BookID: f.book, ReturnedBy: u2, ReturnedAt: t1})
	require.ErrorIs(t, err, errs.ErrReturnMismatch)

	require.Equal(t, 1, f.active(t))
	// a returned_at before checked_out_at is clamped
	require.NoError(t, f.repo.UpdateReturned(ctx, model.UpdateReturned{
		CheckoutID: first, BookID: f.book, ReturnedBy: u1, ReturnedAt: t1.Add(-time.Hour),
	}))
	require.Zero(t, f.active(t))

	err = f.repo.UpdateReturned(ctx, model.UpdateReturned{CheckoutID: first, BookID: f.book, ReturnedBy: u1, ReturnedAt: t1})
	require.ErrorIs(t, err, errs.ErrAlreadyReturned)

	second, err := f.repo.Create(ctx, model.CreateCheckout{BookID: f.book, CheckedOutBy: u2, CheckedOutAt: t1.Add(time.Minute)})
	require.NoError(t, err)

	history, err := f.repo.FindHistoryByBookID(ctx, f.book)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, second, history[0].ID)
	require.False(t, history[0].IsReturned())
	require.Equal(t, first, history[1].ID)
	require.Equal(t, u1, history[1].CheckedOutBy.ID)
	require.True(t, history[1].CheckedOutAt.Equal(t1))
	require.True(t, history[1].IsReturned())
	require.True(t, history[1].ReturnedAt.Equal(t1))

	mine, err := f.repo.FindUnreturnedByUserID(ctx, u2)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, second, mine[0].ID)

	book, err := f.repo.GetBook(ctx, f.book)
	require.NoError(t, err)
	require.NotNil(t, book.Checkout)
	require.Equal(t, u2, book.Checkout.CheckedOutBy.ID)
}

func TestIntegration_DeleteBookKeepsLoans(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	owner, borrower := f.users[0], f.users[1]
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.ErrorIs(t, f.repo.DeleteBook(ctx, f.book, borrower), errs.ErrBookNotFound)

	checkoutID, err := f.repo.Create(ctx, model.CreateCheckout{BookID: f.book, CheckedOutBy: borrower, CheckedOutAt: now})
	require.NoError(t, err)
	require.ErrorIs(t, f.repo.DeleteBook(ctx, f.book, owner), errs.ErrAlreadyCheckedOut)
	require.Equal(t, 1, f.active(t))

	require.NoError(t, f.repo.UpdateReturned(ctx, model.UpdateReturned{
		CheckoutID: checkoutID, BookID: f.book, ReturnedBy: borrower, ReturnedAt: now.Add(time.Minute),
	}))
	require.ErrorIs(t, f.repo.DeleteBook(ctx, f.book, owner), errs.ErrBookHasHistory)

	history, err := f.repo.FindHistoryByBookID(ctx, f.book)
	require.NoError(t, err)
	require.Len(t, history, 1)

	spare, err := f.repo.CreateBook(ctx, model.CreateBookRequest{Title: "Emma", Author: "Austen", Isbn: "9780141439587", OwnerID: owner})
	require.NoError(t, err)
	require.NoError(t, f.repo.UpdateBook(ctx, spare, owner, model.UpdateBookRequest{Title: "Emma", Author: "Jane Austen", Isbn: "9780141439587"}))
	book, err := f.repo.GetBook(ctx, spare)
	require.NoError(t, err)
	require.Equal(t, "Jane Austen", book.Author)
	require.NoError(t, f.repo.DeleteBook(ctx, spare, owner))
	_, err = f.repo.GetBook(ctx, spare)
	require.ErrorIs(t, err, errs.ErrBookNotFound)
}
