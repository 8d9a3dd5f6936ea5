package source

import (
	"context"
	"fmt"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/store/duckdb/snapshot"
)

type snapshotSource struct {
	store   snapshot.Store
	dataset string
}

// NewSnapshot serves rows previously ingested into the local store.
func NewSnapshot(store snapshot.Store, dataset string) Source {
	return &snapshotSource{store: store, dataset: dataset}
}

func (s *snapshotSource) Fetch(ctx context.Context) ([]domain.Row, error) {
	if s.store == nil {
		return nil, fmt.Errorf("snapshot %s: no snapshot store configured", s.dataset)
	}
	ds, err := s.store.Load(ctx, s.dataset)
	if err != nil {
		return nil, err
	}
	return ds.Rows, nil
}
