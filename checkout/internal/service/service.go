package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/model"
	"github.com/Astemirdum/library-checkout/checkout/internal/repository"
	"github.com/Astemirdum/library-checkout/pkg/kafka"
)

const tracerName = "github.com/Astemirdum/library-checkout/checkout"

// EventLogger receives checkout transitions after they are committed.
type EventLogger interface {
	Log(event kafka.CheckoutEvent) error
}

// Service is the checkout coordinator. It never retries: retryable
// transaction failures are returned to the caller as they are.
type Service struct {
	log    *zap.Logger
	repo   repository.CheckoutRepository
	events EventLogger
	tracer trace.Tracer
	now    func() time.Time
}

func NewService(repo repository.CheckoutRepository, events EventLogger, log *zap.Logger) *Service {
	return &Service{
		log:    log.Named("checkout"),
		repo:   repo,
		events: events,
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateCheckout(ctx context.Context, bookID, userID uuid.UUID) (_ uuid.UUID, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.create", trace.WithAttributes(
		attribute.String("book.id", bookID.String()),
		attribute.String("user.id", userID.String()),
	))
	defer func() { finish(span, err) }()

	event := model.CreateCheckout{
		BookID:       bookID,
		CheckedOutBy: userID,
		CheckedOutAt: s.now(),
	}
	checkoutID, err := s.repo.Create(ctx, event)
	if err != nil {
		return uuid.Nil, err
	}
	span.SetAttributes(attribute.String("checkout.id", checkoutID.String()))
	s.log.Info("book checked out",
		zap.Stringer("checkout_id", checkoutID),
		zap.Stringer("book_id", bookID),
		zap.Stringer("user_id", userID))

	s.publish(kafka.CheckoutEvent{
		Type:       kafka.EventCheckoutCreated,
		CheckoutID: checkoutID,
		BookID:     bookID,
		UserID:     userID,
		Timestamp:  event.CheckedOutAt,
	})
	return checkoutID, nil
}

func (s *Service) ReturnCheckout(ctx context.Context, bookID, checkoutID, userID uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.return", trace.WithAttributes(
		attribute.String("book.id", bookID.String()),
		attribute.String("checkout.id", checkoutID.String()),
		attribute.String("user.id", userID.String()),
	))
	defer func() { finish(span, err) }()

	event := model.UpdateReturned{
		CheckoutID: checkoutID,
		BookID:     bookID,
		ReturnedBy: userID,
		ReturnedAt: s.now(),
	}
	if err = s.repo.UpdateReturned(ctx, event); err != nil {
		return err
	}
	s.log.Info("book returned",
		zap.Stringer("checkout_id", checkoutID),
		zap.Stringer("book_id", bookID),
		zap.Stringer("user_id", userID))

	s.publish(kafka.CheckoutEvent{
		Type:       kafka.EventCheckoutReturned,
		CheckoutID: checkoutID,
		BookID:     bookID,
		UserID:     userID,
		Timestamp:  event.ReturnedAt,
	})
	return nil
}

func (s *Service) ListUnreturned(ctx context.Context) (_ model.Checkouts, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.list_unreturned")
	defer func() { finish(span, err) }()

	items, err := s.repo.FindUnreturnedAll(ctx)
	if err != nil {
		return model.Checkouts{}, err
	}
	return checkouts(items), nil
}

func (s *Service) ListUnreturnedByUser(ctx context.Context, userID uuid.UUID) (_ model.Checkouts, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.list_unreturned_by_user", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer func() { finish(span, err) }()

	items, err := s.repo.FindUnreturnedByUserID(ctx, userID)
	if err != nil {
		return model.Checkouts{}, err
	}
	return checkouts(items), nil
}

// History returns the active checkout of the book first, if there is one,
// then its returned checkouts, most recently returned first.
func (s *Service) History(ctx context.Context, bookID uuid.UUID) (_ model.Checkouts, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.history", trace.WithAttributes(
		attribute.String("book.id", bookID.String()),
	))
	defer func() { finish(span, err) }()

	items, err := s.repo.FindHistoryByBookID(ctx, bookID)
	if err != nil {
		return model.Checkouts{}, err
	}
	span.SetAttributes(attribute.Int("checkout.count", len(items)))
	return checkouts(items), nil
}

// publish never fails the caller: the transition is already committed.
func (s *Service) publish(event kafka.CheckoutEvent) {
	if err := s.events.Log(event); err != nil {
		s.log.Warn("publish checkout event",
			zap.String("type", string(event.Type)),
			zap.Stringer("checkout_id", event.CheckoutID),
			zap.Error(err))
	}
}

func checkouts(items []model.Checkout) model.Checkouts {
	if items == nil {
		items = []model.Checkout{}
	}
	return model.Checkouts{Items: items}
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
