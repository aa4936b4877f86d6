package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trustmap/internal/domain"
	"trustmap/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Source acquires a raw snapshot from the upstream ledger.
type Source interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*domain.Snapshot, error)

func (f SourceFunc) Load(ctx context.Context) (*domain.Snapshot, error) {
	return f(ctx)
}

// FileSource reads a static fixture. The format follows the extension:
// .json, or .yaml/.yml.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read snapshot fixture")
	}
	snap, err := Decode(data, filepath.Ext(s.Path))
	if err != nil {
		return nil, err
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}
	return snap, nil
}

// Decode parses fixture bytes in the format named by ext.
func Decode(data []byte, ext string) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON snapshot")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML snapshot")
		}
	default:
		return nil, errors.Wrap(errors.ErrUnsupportedFixture, ext)
	}
	return &snap, nil
}
