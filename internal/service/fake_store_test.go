package service

import (
	"context"
	"fmt"
	"sync"

	"taka/internal/ledger"
)

// fakeStore is an in-memory ledger.Store with switchable failure modes.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]ledger.Row

	missingTables map[string]bool
	getErrs       map[string]error
	updateErrs    map[string]error
	deleteErrs    map[string]error
	insertErr     error

	procErr  error
	procNoop bool // procedure reports success without deleting anything

	procCalls   int
	deleteCalls []string
	inserts     []ledger.Row
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:        map[string][]ledger.Row{},
		missingTables: map[string]bool{},
		getErrs:       map[string]error{},
		updateErrs:    map[string]error{},
		deleteErrs:    map[string]error{},
	}
}

func (f *fakeStore) seed(table string, rows ...ledger.Row) {
	f.tables[table] = append(f.tables[table], rows...)
}

func matches(row ledger.Row, filter ledger.Filter) bool {
	for k, want := range filter {
		if fmt.Sprint(row[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (f *fakeStore) tableErr(table string, forced map[string]error) error {
	if f.missingTables[table] {
		return &ledger.StoreError{Kind: ledger.KindTableMissing, Table: table, Message: "table does not exist"}
	}
	if err, ok := forced[table]; ok {
		return err
	}
	return nil
}

func (f *fakeStore) GetRow(ctx context.Context, table string, filter ledger.Filter) (ledger.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.tableErr(table, f.getErrs); err != nil {
		return nil, err
	}
	for _, r := range f.tables[table] {
		if matches(r, filter) {
			return r, nil
		}
	}
	return nil, &ledger.StoreError{Kind: ledger.KindNotFound, Table: table, Message: "no matching row"}
}

func (f *fakeStore) ListRows(ctx context.Context, table string, filter ledger.Filter, limit int) ([]ledger.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.tableErr(table, f.getErrs); err != nil {
		return nil, err
	}
	var out []ledger.Row
	for _, r := range f.tables[table] {
		if matches(r, filter) {
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) InsertRow(ctx context.Context, table string, fields ledger.Fields) (ledger.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	row := ledger.Row(fields)
	f.tables[table] = append(f.tables[table], row)
	f.inserts = append(f.inserts, row)
	return row, nil
}

func (f *fakeStore) UpdateRow(ctx context.Context, table string, filter ledger.Filter, fields ledger.Fields) (ledger.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.tableErr(table, f.updateErrs); err != nil {
		return nil, err
	}
	for _, r := range f.tables[table] {
		if matches(r, filter) {
			for k, v := range fields {
				r[k] = v
			}
			return r, nil
		}
	}
	return nil, &ledger.StoreError{Kind: ledger.KindNotFound, Table: table, Message: "no matching row"}
}

func (f *fakeStore) DeleteRows(ctx context.Context, table string, filter ledger.Filter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, table)
	if err := f.tableErr(table, f.deleteErrs); err != nil {
		return err
	}
	kept := f.tables[table][:0]
	for _, r := range f.tables[table] {
		if !matches(r, filter) {
			kept = append(kept, r)
		}
	}
	f.tables[table] = kept
	return nil
}

func (f *fakeStore) CallProcedure(ctx context.Context, name string, args ledger.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procCalls++
	if f.procErr != nil {
		return f.procErr
	}
	if f.procNoop {
		return nil
	}
	// Simulate the atomic cascade: wipe everything referencing the id.
	id := fmt.Sprint(args["p_collection_id"])
	for table, rows := range f.tables {
		kept := rows[:0]
		for _, r := range rows {
			if fmt.Sprint(r["id"]) == id || fmt.Sprint(r["collection_id"]) == id || fmt.Sprint(r["reference"]) == id {
				continue
			}
			kept = append(kept, r)
		}
		f.tables[table] = kept
	}
	return nil
}
