// Package repository declares the persistence contracts used by the use cases.
package repository

import "errors"

// ErrNoRowsUpdated indicates that an update matched no pending row.
var ErrNoRowsUpdated = errors.New("no rows updated")
