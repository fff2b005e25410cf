package repo

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// Source provides the four tables. Implementations are read once at startup.
type Source interface {
	Name() string
	Load(ctx context.Context) (*entity.Tables, error)
}

// DirSource reads <table>.csv files from a directory, e.g. a dbt seeds folder.
type DirSource struct {
	dir  string
	fsys fs.FS
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir, fsys: os.DirFS(dir)}
}

// NewFSSource reads the CSV files from an arbitrary fs.FS.
func NewFSSource(name string, fsys fs.FS) *DirSource {
	return &DirSource{dir: name, fsys: fsys}
}

func (s *DirSource) Name() string { return "csv:" + s.dir }

func (s *DirSource) Load(ctx context.Context) (*entity.Tables, error) {
	return loadCSVTables(ctx, func(_ context.Context, table string) (io.ReadCloser, error) {
		return s.fsys.Open(table + ".csv")
	})
}
