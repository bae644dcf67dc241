package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm MySQL connection. All
// operations work on raw tables (no model schemas), so soft-delete hooks
// never apply: deletes here are real deletes.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetRow(ctx context.Context, table string, filter Filter) (Row, error) {
	row := map[string]interface{}{}
	err := s.db.WithContext(ctx).Table(table).Where(map[string]interface{}(filter)).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, table, "no matching row", err)
		}
		return nil, s.classify(table, err)
	}
	return Row(row), nil
}

func (s *GormStore) ListRows(ctx context.Context, table string, filter Filter, limit int) ([]Row, error) {
	raw := []map[string]interface{}{}
	tx := s.db.WithContext(ctx).Table(table).Where(map[string]interface{}(filter))
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&raw).Error; err != nil {
		return nil, s.classify(table, err)
	}
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, Row(r))
	}
	return rows, nil
}

func (s *GormStore) InsertRow(ctx context.Context, table string, fields Fields) (Row, error) {
	if err := s.db.WithContext(ctx).Table(table).Create(map[string]interface{}(fields)).Error; err != nil {
		return nil, s.classify(table, err)
	}
	return Row(fields), nil
}

func (s *GormStore) UpdateRow(ctx context.Context, table string, filter Filter, fields Fields) (Row, error) {
	err := s.db.WithContext(ctx).Table(table).
		Where(map[string]interface{}(filter)).
		Updates(map[string]interface{}(fields)).Error
	if err != nil {
		return nil, s.classify(table, err)
	}
	// Re-read so callers get the stored row; also catches filters that
	// matched nothing (MySQL reports 0 affected rows for no-op updates,
	// so RowsAffected alone cannot tell "missing" from "unchanged").
	return s.GetRow(ctx, table, filter)
}

func (s *GormStore) DeleteRows(ctx context.Context, table string, filter Filter) error {
	err := s.db.WithContext(ctx).Table(table).Where(map[string]interface{}(filter)).Delete(nil).Error
	if err != nil {
		return s.classify(table, err)
	}
	return nil
}

func (s *GormStore) CallProcedure(ctx context.Context, name string, args Fields) error {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	placeholders := make([]string, len(keys))
	values := make([]interface{}, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		values[i] = args[k]
	}
	stmt := fmt.Sprintf("CALL %s(%s)", name, strings.Join(placeholders, ", "))
	if err := s.db.WithContext(ctx).Exec(stmt, values...).Error; err != nil {
		return newError(KindProcFailed, "", fmt.Sprintf("%s: %v", name, err), err)
	}
	return nil
}

// classify maps driver errors to store error kinds. MySQL reports a
// missing table as error 1146 ("Table '...' doesn't exist").
func (s *GormStore) classify(table string, err error) *StoreError {
	msg := err.Error()
	if strings.Contains(msg, "1146") || strings.Contains(msg, "doesn't exist") || strings.Contains(msg, "no such table") {
		return newError(KindTableMissing, table, "table does not exist", err)
	}
	return newError(KindQueryFailed, table, msg, err)
}
