package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"taka/internal/domain"
	"taka/internal/ledger"
	"taka/internal/logger"

	"github.com/google/uuid"
)

// CascadeProcedure is the server-side routine that removes a collection and
// every dependent row in one transaction. When the procedure is missing or
// fails, the service falls back to best-effort per-table deletes.
const CascadeProcedure = "delete_collection_cascade"

var (
	ErrInvalidCollectionID = errors.New("invalid collection id")
	ErrStoreNotConfigured  = errors.New("ledger store not configured")
	ErrUnexpected          = errors.New("unexpected error deleting collection")
)

// PartialDeleteError means the post-delete verification still found rows
// referencing the collection. Details carries the individual delete
// failures so the caller can see what did not go through.
type PartialDeleteError struct {
	Details []string
}

func (e *PartialDeleteError) Error() string {
	return "collection not fully deleted: " + strings.Join(e.Details, "; ")
}

// CollectionDeletionService removes a collection aggregate: the unified and
// legacy parent rows plus photos, materials, queued wallet updates and
// ledger entries referencing the collection. Success is decided by an
// independent verification read, never by the delete calls' own results.
type CollectionDeletionService struct {
	store ledger.Store
}

func NewCollectionDeletionService(store ledger.Store) *CollectionDeletionService {
	return &CollectionDeletionService{store: store}
}

type deleteTarget struct {
	table  string
	filter ledger.Filter
}

type deleteOutcome struct {
	table   string
	skipped bool
	err     error
	message string
}

// DeleteCollection removes the collection and everything referencing it.
// Preferred path is the atomic server-side procedure; otherwise each
// dependent table is deleted best-effort (missing tables tolerated, every
// delete attempted regardless of earlier failures). A verification pass
// always runs afterwards, including after a fast path that claimed
// success, and the observed post-state alone decides the result.
func (s *CollectionDeletionService) DeleteCollection(ctx context.Context, collectionID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("[CascadeDelete] panic deleting %s: %v", collectionID, r)
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	if s.store == nil {
		return ErrStoreNotConfigured
	}
	if collectionID == "" || uuid.Validate(collectionID) != nil {
		return ErrInvalidCollectionID
	}

	var outcomes []deleteOutcome
	if procErr := s.store.CallProcedure(ctx, CascadeProcedure, ledger.Fields{"p_collection_id": collectionID}); procErr == nil {
		logger.Log.Infof("[CascadeDelete] %s removed via %s", collectionID, CascadeProcedure)
	} else {
		logger.Log.Warnf("[CascadeDelete] %s unavailable (%v), falling back to per-table deletes", CascadeProcedure, procErr)
		outcomes = s.fallbackDelete(ctx, collectionID)
	}

	failures := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", o.table, o.message))
		}
	}

	remnants := s.verify(ctx, collectionID)
	if len(remnants) > 0 {
		details := failures
		if len(details) == 0 {
			details = remnants
		}
		logger.Log.Errorf("[CascadeDelete] %s verification found remnants: %v", collectionID, remnants)
		return &PartialDeleteError{Details: details}
	}

	logger.Log.Infof("[CascadeDelete] %s verified clean", collectionID)
	return nil
}

// fallbackDelete issues the per-table deletes: children first, then the two
// parent representations. Tables within each group are independent, so each
// group runs concurrently and every delete is attempted no matter what the
// others return.
func (s *CollectionDeletionService) fallbackDelete(ctx context.Context, collectionID string) []deleteOutcome {
	children := []deleteTarget{
		{"collection_photos", ledger.Filter{"collection_id": collectionID}},
		{"collection_materials", ledger.Filter{"collection_id": collectionID}},
		{"wallet_update_queue", ledger.Filter{"collection_id": collectionID}},
		{"wallet_transactions", ledger.Filter{"reference": collectionID}},
		{"wallet_transactions", ledger.Filter{"reference": collectionID, "source_type": domain.TxTypeCollectionApproval}},
		// Pre-migration deployments keyed ledger rows by source_id.
		{"wallet_transactions", ledger.Filter{"source_id": collectionID}},
	}
	parents := []deleteTarget{
		{"collections", ledger.Filter{"id": collectionID}},
		{"legacy_collections", ledger.Filter{"id": collectionID}},
	}

	outcomes := s.runDeletes(ctx, children)
	outcomes = append(outcomes, s.runDeletes(ctx, parents)...)
	return outcomes
}

func (s *CollectionDeletionService) runDeletes(ctx context.Context, targets []deleteTarget) []deleteOutcome {
	outcomes := make([]deleteOutcome, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t deleteTarget) {
			defer wg.Done()
			err := s.store.DeleteRows(ctx, t.table, t.filter)
			switch {
			case err == nil:
				outcomes[i] = deleteOutcome{table: t.table}
			case ledger.IsTableMissing(err):
				outcomes[i] = deleteOutcome{table: t.table, skipped: true, message: "table absent in this deployment, skipped"}
			default:
				outcomes[i] = deleteOutcome{table: t.table, err: err, message: err.Error()}
			}
		}(i, t)
	}
	wg.Wait()
	return outcomes
}

// verify re-reads every place a trace of the collection could survive.
// Read errors are logged and treated as "nothing found": only an actually
// observed row makes the operation a failure.
func (s *CollectionDeletionService) verify(ctx context.Context, collectionID string) []string {
	var remnants []string

	for _, table := range []string{"collections", "legacy_collections"} {
		if _, err := s.store.GetRow(ctx, table, ledger.Filter{"id": collectionID}); err == nil {
			remnants = append(remnants, fmt.Sprintf("%s: parent row still present", table))
		} else if !ledger.IsNotFound(err) && !ledger.IsTableMissing(err) {
			logger.Log.Warnf("[CascadeDelete] verify read %s failed: %v", table, err)
		}
	}

	checks := []deleteTarget{
		{"wallet_transactions", ledger.Filter{"reference": collectionID}},
		{"wallet_update_queue", ledger.Filter{"collection_id": collectionID}},
	}
	for _, c := range checks {
		rows, err := s.store.ListRows(ctx, c.table, c.filter, 1)
		if err != nil {
			if !ledger.IsTableMissing(err) {
				logger.Log.Warnf("[CascadeDelete] verify read %s failed: %v", c.table, err)
			}
			continue
		}
		if len(rows) > 0 {
			remnants = append(remnants, fmt.Sprintf("%s: rows still reference collection", c.table))
		}
	}
	return remnants
}
