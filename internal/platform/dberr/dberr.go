// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Storage code never compares driver messages: a unique violation is
// recognised by its SQLSTATE and surfaced as a typed [*UniqueViolation]
// naming the constraint, so callers can tell a duplicate corpus name from any
// other failure with [errors.As].
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/lexica/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// UniqueViolation reports that an insert or update hit a unique constraint.
type UniqueViolation struct {
	// Constraint is the name of the violated constraint (e.g. "corpus_name_key").
	Constraint string
	// Action is the storage operation that failed.
	Action string
	Err    error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("%s: unique constraint %q violated", e.Action, e.Constraint)
}

func (e *UniqueViolation) Unwrap() error { return e.Err }

// IsUniqueViolation reports whether err is a unique violation on constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var violation *UniqueViolation
	if !errors.As(err, &violation) {
		return false
	}
	return constraint == "" || violation.Constraint == constraint
}

// Wrap inspects a database error and classifies it.
//
//   - pgx.ErrNoRows becomes [ErrNotFound].
//   - SQLSTATE 23505 becomes a [*UniqueViolation].
//   - Anything else becomes an Internal [apperr.AppError] carrying the cause.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return &UniqueViolation{Constraint: pgErr.ConstraintName, Action: action, Err: err}
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
