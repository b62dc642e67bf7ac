package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/driano7/Xoco-POS-sub003/pkg/metrics"
)

// allowedTables guards the generic write path: replayed operations
// carry table names from the local queue, and only known POS tables may
// be touched.
var allowedTables = map[string]bool{
	"orders":                true,
	"order_items":           true,
	"reservations":          true,
	"payments":              true,
	"loyalty_accounts":      true,
	"compliance_checklists": true,
	"inventory_items":       true,
}

// RowStore implements the per-table write surface the sync layer
// replays against: insert, upsert, delete with column maps. Statements
// are built from sorted column names so identical rows always produce
// identical SQL.
type RowStore struct {
	BaseRepository
	metrics *metrics.Metrics
}

func NewRowStore(base BaseRepository, m *metrics.Metrics) *RowStore {
	return &RowStore{BaseRepository: base, metrics: m}
}

func (s *RowStore) Insert(ctx context.Context, table string, rows []map[string]interface{}) (err error) {
	defer s.observe("insert", time.Now(), &err)
	return s.write(ctx, table, rows, "")
}

func (s *RowStore) Upsert(ctx context.Context, table string, rows []map[string]interface{}, conflictKey string) (err error) {
	defer s.observe("upsert", time.Now(), &err)
	if conflictKey == "" {
		conflictKey = "id"
	}
	return s.write(ctx, table, rows, conflictKey)
}

func (s *RowStore) observe(op string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if *err != nil {
		status = "error"
	}
	s.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
	s.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *RowStore) write(ctx context.Context, table string, rows []map[string]interface{}, conflictKey string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	for _, row := range rows {
		if len(row) == 0 {
			return fmt.Errorf("empty row for table %s", table)
		}
		cols := sortedColumns(row)

		placeholders := make([]string, len(cols))
		args := make([]interface{}, len(cols))
		for i, c := range cols {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = row[c]
		}

		query := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
		)
		if conflictKey != "" {
			sets := make([]string, 0, len(cols))
			for _, c := range cols {
				if c == conflictKey {
					continue
				}
				sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
			}
			query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", conflictKey, strings.Join(sets, ", "))
		}

		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", table, err)
		}
	}
	return nil
}

func (s *RowStore) Delete(ctx context.Context, table string, filter map[string]interface{}) (err error) {
	defer s.observe("delete", time.Now(), &err)
	if err := checkTable(table); err != nil {
		return err
	}
	if len(filter) == 0 {
		return fmt.Errorf("refusing unfiltered delete on %s", table)
	}

	cols := sortedColumns(filter)
	conds := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		conds[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args[i] = filter[c]
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, strings.Join(conds, " AND "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func checkTable(table string) error {
	if !allowedTables[table] {
		return fmt.Errorf("table %s is not writable through the sync path", table)
	}
	return nil
}

func sortedColumns(row map[string]interface{}) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
