// Package repository persists the durable slices of the system: menu
// versions, the station registry, correction rules and archived
// receipts.  Live orders never touch it; they belong to the ledger.
// Sentinel errors let handlers map failures to HTTP codes without
// inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrNoMenu is returned when no menu version has been uploaded yet.
var ErrNoMenu = errors.New("no menu version")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as a second station with the same key.  Handlers
// should translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate")
