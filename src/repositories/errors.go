package repositories

import "errors"

// ErrNotFound is returned by lookups when no row matches. Repositories
// translate pgx.ErrNoRows into this so callers never import pgx just to
// branch on a missing row.
var ErrNotFound = errors.New("record not found")
