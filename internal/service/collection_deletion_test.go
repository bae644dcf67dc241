package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taka/internal/domain"
	"taka/internal/ledger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCollectionAggregate(f *fakeStore, id string) {
	f.seed("collections", ledger.Row{"id": id, "collector_id": 1, "status": domain.CollectionStatusApproved})
	f.seed("collection_photos",
		ledger.Row{"id": 1, "collection_id": id},
		ledger.Row{"id": 2, "collection_id": id})
	f.seed("collection_materials", ledger.Row{"id": 1, "collection_id": id, "material": domain.MaterialPlastic})
	f.seed("wallet_update_queue", ledger.Row{"id": 1, "collection_id": id, "status": domain.QueueStatusPending})
	f.seed("wallet_transactions", ledger.Row{"id": 1, "reference": id, "source_type": domain.TxTypeCollectionApproval})
}

func remaining(t *testing.T, f *fakeStore, table string, filter ledger.Filter) int {
	t.Helper()
	rows, err := f.ListRows(context.Background(), table, filter, 0)
	require.NoError(t, err)
	return len(rows)
}

func TestDeleteCollectionInvalidID(t *testing.T) {
	svc := NewCollectionDeletionService(newFakeStore())
	assert.ErrorIs(t, svc.DeleteCollection(context.Background(), ""), ErrInvalidCollectionID)
	assert.ErrorIs(t, svc.DeleteCollection(context.Background(), "not-a-uuid"), ErrInvalidCollectionID)
}

func TestDeleteCollectionNilStore(t *testing.T) {
	svc := NewCollectionDeletionService(nil)
	assert.ErrorIs(t, svc.DeleteCollection(context.Background(), uuid.NewString()), ErrStoreNotConfigured)
}

func TestDeleteCollectionFastPathSkipsFallback(t *testing.T) {
	f := newFakeStore()
	id := uuid.NewString()
	seedCollectionAggregate(f, id)
	svc := NewCollectionDeletionService(f)

	require.NoError(t, svc.DeleteCollection(context.Background(), id))
	assert.Equal(t, 1, f.procCalls)
	assert.Empty(t, f.deleteCalls, "atomic path success must not trigger per-table deletes")
}

func TestDeleteCollectionFastPathFalseSuccessIsCaught(t *testing.T) {
	// The procedure reports success but leaves the parent row behind; the
	// verification pass must catch it instead of trusting the call.
	f := newFakeStore()
	id := uuid.NewString()
	seedCollectionAggregate(f, id)
	f.procNoop = true
	svc := NewCollectionDeletionService(f)

	err := svc.DeleteCollection(context.Background(), id)
	var partial *PartialDeleteError
	require.ErrorAs(t, err, &partial)
	assert.NotEmpty(t, partial.Details)
}

func TestDeleteCollectionFallbackRemovesEverything(t *testing.T) {
	f := newFakeStore()
	id := uuid.NewString()
	seedCollectionAggregate(f, id)
	f.procErr = errors.New("PROCEDURE delete_collection_cascade does not exist")
	svc := NewCollectionDeletionService(f)

	require.NoError(t, svc.DeleteCollection(context.Background(), id))

	assert.Zero(t, remaining(t, f, "collections", ledger.Filter{"id": id}))
	assert.Zero(t, remaining(t, f, "collection_photos", ledger.Filter{"collection_id": id}))
	assert.Zero(t, remaining(t, f, "collection_materials", ledger.Filter{"collection_id": id}))
	assert.Zero(t, remaining(t, f, "wallet_update_queue", ledger.Filter{"collection_id": id}))
	assert.Zero(t, remaining(t, f, "wallet_transactions", ledger.Filter{"reference": id}))
}

func TestDeleteCollectionMissingTablesTolerated(t *testing.T) {
	f := newFakeStore()
	id := uuid.NewString()
	f.seed("collections", ledger.Row{"id": id})
	f.procErr = errors.New("procedure missing")
	f.missingTables["legacy_collections"] = true
	f.missingTables["wallet_update_queue"] = true
	svc := NewCollectionDeletionService(f)

	assert.NoError(t, svc.DeleteCollection(context.Background(), id))
}

func TestDeleteCollectionParentFailureSurfacesDetails(t *testing.T) {
	f := newFakeStore()
	id := uuid.NewString()
	seedCollectionAggregate(f, id)
	f.seed("legacy_collections", ledger.Row{"id": id})
	f.procErr = errors.New("procedure missing")
	f.deleteErrs["collections"] = &ledger.StoreError{Kind: ledger.KindQueryFailed, Table: "collections", Message: "permission denied for table collections"}
	svc := NewCollectionDeletionService(f)

	err := svc.DeleteCollection(context.Background(), id)
	var partial *PartialDeleteError
	require.ErrorAs(t, err, &partial)

	found := false
	for _, d := range partial.Details {
		if strings.Contains(d, "permission denied") {
			found = true
		}
	}
	assert.True(t, found, "details must include the failed unified-parent delete message, got %v", partial.Details)

	// Legacy parent was still removed despite the unified failure.
	assert.Zero(t, remaining(t, f, "legacy_collections", ledger.Filter{"id": id}))
}

func TestDeleteCollectionIdempotent(t *testing.T) {
	f := newFakeStore()
	id := uuid.NewString()
	seedCollectionAggregate(f, id)
	f.procErr = errors.New("procedure missing")
	svc := NewCollectionDeletionService(f)

	require.NoError(t, svc.DeleteCollection(context.Background(), id))
	require.NoError(t, svc.DeleteCollection(context.Background(), id), "second delete of an already-clean id must succeed")
}
