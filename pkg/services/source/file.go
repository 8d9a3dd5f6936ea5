package source

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
)

type fileSource struct {
	path   string
	format string
}

func NewFile(path, format string) Source {
	return &fileSource{path: path, format: DetectFormat(format, path)}
}

func (s *fileSource) Fetch(ctx context.Context) ([]domain.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return normalize.Parse(s.format, data)
}
