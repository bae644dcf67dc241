package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Row is a dynamically-shaped record returned by the store. The engines
// only touch a handful of well-known columns, so a map keeps the surface
// table-agnostic the way the hosted backend's client is.
type Row map[string]any

// ErrorKind classifies store failures so callers can branch on them
// without string matching.
type ErrorKind string

const (
	// KindNotFound: a single-row read matched nothing.
	KindNotFound ErrorKind = "not_found"
	// KindTableMissing: the target table does not exist in this
	// deployment's schema. Treated as tolerable by cascade deletes.
	KindTableMissing ErrorKind = "table_missing"
	// KindQueryFailed: any other read/write failure.
	KindQueryFailed ErrorKind = "query_failed"
	// KindProcFailed: a stored procedure call failed or is missing.
	KindProcFailed ErrorKind = "proc_failed"
)

// StoreError is the typed error every Store operation returns on failure.
type StoreError struct {
	Kind    ErrorKind
	Table   string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("ledger: %s on %s: %s", e.Kind, e.Table, e.Message)
	}
	return fmt.Sprintf("ledger: %s: %s", e.Kind, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, table, message string, err error) *StoreError {
	return &StoreError{Kind: kind, Table: table, Message: message, Err: err}
}

// IsNotFound reports whether err is a single-row read miss.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindNotFound
}

// IsTableMissing reports whether err means the table is absent from the
// schema rather than the operation failing on existing data.
func IsTableMissing(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindTableMissing
}

// Filter is a column -> value equality match, ANDed together.
type Filter map[string]any

// Fields are column values for inserts and updates.
type Fields map[string]any

// Store is the narrow surface the reconciliation services depend on.
// Implementations must keep the error kinds distinguishable; cascade
// deletion relies on KindTableMissing being non-fatal.
type Store interface {
	// GetRow returns the first row matching filter, or a KindNotFound error.
	GetRow(ctx context.Context, table string, filter Filter) (Row, error)
	// ListRows returns up to limit rows matching filter (limit <= 0 means no cap).
	ListRows(ctx context.Context, table string, filter Filter, limit int) ([]Row, error)
	// InsertRow inserts fields and returns the stored row.
	InsertRow(ctx context.Context, table string, fields Fields) (Row, error)
	// UpdateRow applies fields to rows matching filter and returns the
	// first updated row; KindNotFound when nothing matched.
	UpdateRow(ctx context.Context, table string, filter Filter, fields Fields) (Row, error)
	// DeleteRows removes all rows matching filter. Deleting from an
	// absent table yields a KindTableMissing error.
	DeleteRows(ctx context.Context, table string, filter Filter) error
	// CallProcedure invokes a named server-side procedure; the atomic
	// cascade-delete fast path goes through here.
	CallProcedure(ctx context.Context, name string, args Fields) error
}
