// Package repository persists clean login records to PostgreSQL.
package repository

import "errors"

// ErrDuplicateRecord reports a record_id already durably stored, typically
// from a prior run. It is a soft duplicate: callers log and skip, they do
// not abort the run.
var ErrDuplicateRecord = errors.New("record already stored")
