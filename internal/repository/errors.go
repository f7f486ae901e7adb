// Package repository provides database access for domain entities.
package repository

import "errors"

// ErrNotFound marks lookups whose target row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict marks mutations rejected to protect an invariant, such as a
// duplicate account name or deleting an account that still has transactions.
var ErrConflict = errors.New("conflict")
