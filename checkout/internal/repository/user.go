package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/errs"
	"github.com/Astemirdum/library-checkout/checkout/internal/model"
)

func (r *repository) CreateUser(ctx context.Context, req model.CreateUserRequest) (uuid.UUID, error) {
	q, args, err := qb.Insert(usersTableName).
		Columns("name").
		Values(req.Name).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	if err := r.db.GetContext(ctx, &id, q, args...); err != nil {
		r.log.Error("CreateUser", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return uuid.Nil, errors.Wrap(err, "insert user")
	}
	return id, nil
}

func (r *repository) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	q, args, err := qb.Select("user_id", "name").
		From(usersTableName).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := r.db.GetContext(ctx, &u, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errors.Wrapf(errs.ErrUserNotFound, "user %s", userID)
		}
		return model.User{}, errors.Wrap(err, "select user")
	}
	return u, nil
}
