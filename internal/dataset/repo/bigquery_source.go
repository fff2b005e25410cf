package repo

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// RowIterator is satisfied by *bigquery.RowIterator.
type RowIterator interface {
	Next(dst interface{}) error
}

// BigQuerySource reads the tables from a BigQuery dataset, where the dbt
// models are materialized in production.
type BigQuerySource struct {
	project string
	dataset string
	read    func(ctx context.Context, table string) RowIterator

	// schema lists a table's column names; nil skips the check before reading
	schema func(ctx context.Context, table string) ([]string, error)
	close  func() error
}

func NewBigQuerySource(ctx context.Context, project, dataset string) (*BigQuerySource, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	ds := client.Dataset(dataset)
	return &BigQuerySource{
		project: project,
		dataset: dataset,
		read: func(ctx context.Context, table string) RowIterator {
			return ds.Table(table).Read(ctx)
		},
		schema: func(ctx context.Context, table string) ([]string, error) {
			md, err := ds.Table(table).Metadata(ctx)
			if err != nil {
				return nil, err
			}
			cols := make([]string, 0, len(md.Schema))
			for _, f := range md.Schema {
				cols = append(cols, f.Name)
			}
			return cols, nil
		},
		close: client.Close,
	}, nil
}

func (s *BigQuerySource) Name() string { return "bigquery:" + s.project + "." + s.dataset }

// Close releases the BigQuery client.
func (s *BigQuerySource) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func (s *BigQuerySource) Load(ctx context.Context) (*entity.Tables, error) {
	d := NewDecoder()
	for _, table := range Tables {
		if err := s.checkSchema(ctx, table); err != nil {
			return nil, err
		}
		if err := decodeIterator(table, s.read(ctx, table), d); err != nil {
			return nil, err
		}
	}
	return d.Tables(), nil
}

// checkSchema validates the table's columns from its metadata, so an empty
// table with the wrong shape fails like a non-empty one.
func (s *BigQuerySource) checkSchema(ctx context.Context, table string) error {
	if s.schema == nil {
		return nil
	}
	cols, err := s.schema(ctx, table)
	if err != nil {
		return fmt.Errorf("metadata %s: %w", table, err)
	}
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	return CheckColumns(table, func(c string) bool { return have[c] })
}

func decodeIterator(table string, it RowIterator, d *Decoder) error {
	for first := true; ; first = false {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", table, err)
		}
		if first {
			if err := CheckColumns(table, func(c string) bool { _, ok := row[c]; return ok }); err != nil {
				return err
			}
		}
		plain := make(map[string]any, len(row))
		for k, v := range row {
			plain[k] = v
		}
		if err := d.Add(table, mapRecord(plain)); err != nil {
			return err
		}
	}
}
