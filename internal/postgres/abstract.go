package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier covers *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var (
	ErrForeignKey = errors.New("referenced row does not exist")
	ErrInvalidID  = errors.New("malformed identifier")
)

// mapPgError translates no-rows into notFound and known SQLSTATE codes into package errors.
func mapPgError(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.ConstraintName)
		case "22P02": // invalid_text_representation (bad uuid)
			if notFound != nil {
				return notFound
			}
			return ErrInvalidID
		}
	}
	return err
}
