// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/vhminh/atrium/internal/platform/apperr"
)

// Wrap classifies a query error into the application error taxonomy.
//
// An absent row becomes the caller's notFound error, so each repository keeps
// its own client-facing message. Anything else is hidden behind a generic
// internal error; the original cause stays attached for logging.
func Wrap(err error, notFound *apperr.AppError) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	return apperr.Internal(err)
}
