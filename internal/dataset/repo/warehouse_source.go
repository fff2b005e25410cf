package repo

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

var schemaRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// WarehouseSource reads the tables from a SQL database (dbt model outputs in
// Postgres, or a local SQLite file).
type WarehouseSource struct {
	db     *sqlx.DB
	schema string
}

// NewWarehouseSource validates the optional schema qualifier since it is
// interpolated into the queries.
func NewWarehouseSource(db *sqlx.DB, schema string) (*WarehouseSource, error) {
	if schema != "" && !schemaRe.MatchString(schema) {
		return nil, fmt.Errorf("invalid warehouse schema %q", schema)
	}
	return &WarehouseSource{db: db, schema: schema}, nil
}

func (s *WarehouseSource) Name() string {
	if s.schema == "" {
		return "warehouse:" + s.db.DriverName()
	}
	return "warehouse:" + s.db.DriverName() + "/" + s.schema
}

func (s *WarehouseSource) qualified(table string) string {
	if s.schema == "" {
		return table
	}
	return s.schema + "." + table
}

func (s *WarehouseSource) Load(ctx context.Context) (*entity.Tables, error) {
	d := NewDecoder()
	for _, table := range Tables {
		if err := s.loadTable(ctx, table, d); err != nil {
			return nil, err
		}
	}
	return d.Tables(), nil
}

func (s *WarehouseSource) loadTable(ctx context.Context, table string, d *Decoder) error {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+s.qualified(table))
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("%s columns: %w", table, err)
	}
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	if err := CheckColumns(table, func(c string) bool { return present[c] }); err != nil {
		return err
	}

	for rows.Next() {
		row := make(map[string]any, len(cols))
		if err := rows.MapScan(row); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		if err := d.Add(table, mapRecord(row)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", table, err)
	}
	return nil
}
