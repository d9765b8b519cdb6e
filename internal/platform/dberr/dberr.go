// Copyright (c) 2026 VeriClass. All rights reserved.

// Package dberr translates pgx-level failures into the application error
// taxonomy so repositories never leak SQLSTATE codes or driver types to
// their callers.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vericlass/vericlass/internal/platform/apperr"
)

// ErrNotFound is returned whenever a queried row does not exist.
var ErrNotFound = apperr.NotFound("Resource")

// SQLSTATE class 23 integrity violations that map to client-facing errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Wrap classifies a database error into an [apperr.AppError]: no rows
// becomes NotFound, integrity violations become Conflict or
// Unprocessable, and anything else is hidden behind an internal error.
// A nil err passes through as nil so callers can wrap unconditionally.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperr.Conflict("Resource already exists")
		case codeForeignKeyViolation:
			return apperr.Unprocessable("Referenced resource does not exist")
		}
	}

	return apperr.Internal(err)
}
