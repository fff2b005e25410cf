package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/repo"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/pkg/database"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/pkg/utilities"
)

var ErrUnknownSource = errors.New("unknown data source")

// NewSource builds the source selected by cfg. The returned close func
// releases any connection the source holds and is never nil.
func NewSource(ctx context.Context, cfg Config) (repo.Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Source {
	case SourceCSV, "":
		return repo.NewDirSource(cfg.Dir), noop, nil
	case SourceS3:
		if cfg.S3Bucket == "" {
			return nil, noop, errors.New("S3_BUCKET is required for the s3 source")
		}
		src, err := repo.NewS3Source(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case SourceWarehouse:
		db, err := database.Connect(cfg.Warehouse)
		if err != nil {
			return nil, noop, fmt.Errorf("warehouse connect: %w", err)
		}
		src, err := repo.NewWarehouseSource(db, cfg.WarehouseSchema)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return src, db.Close, nil
	case SourceBigQuery:
		if cfg.BigQueryProject == "" {
			return nil, noop, errors.New("BIGQUERY_PROJECT is required for the bigquery source")
		}
		src, err := repo.NewBigQuerySource(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

// Loader reads the tables once and stamps them into an immutable Snapshot.
type Loader struct {
	source repo.Source
	logger *zap.SugaredLogger
	now    func() time.Time
	newID  func() string
}

func NewLoader(source repo.Source, logger *zap.SugaredLogger) *Loader {
	return &Loader{
		source: source,
		logger: logger,
		now:    time.Now,
		newID:  utilities.NewSnapshotID,
	}
}

// Load fetches every table from the source. A failure here is a startup error.
func (l *Loader) Load(ctx context.Context) (*entity.Snapshot, error) {
	start := l.now()
	tables, err := l.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.source.Name(), err)
	}

	snap := &entity.Snapshot{
		ID:        l.newID(),
		Source:    l.source.Name(),
		LoadedAt:  l.now().UTC(),
		Events:    tables.Events,
		Deals:     tables.Deals,
		Companies: tables.Companies,
		Contacts:  tables.Contacts,
	}

	l.logger.Infow("snapshot loaded",
		"snapshot_id", snap.ID,
		"source", snap.Source,
		"events", len(snap.Events),
		"deals", len(snap.Deals),
		"companies", len(snap.Companies),
		"contacts", len(snap.Contacts),
		"duration_ms", float64(l.now().Sub(start).Microseconds())/1000.0,
	)
	for table, n := range tables.Coerced {
		if n > 0 {
			l.logger.Warnw("unparseable values treated as missing", "table", table, "values", n)
		}
	}
	return snap, nil
}
