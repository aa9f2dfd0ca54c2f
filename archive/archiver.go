package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"helpsync/types"
)

// ObjectStore is the storage surface used by the archiver
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Archiver writes sync reports and comparisons as JSON objects
type Archiver struct {
	store  ObjectStore
	bucket string
	prefix string
}

// NewArchiver creates an archiver writing under bucket/prefix
func NewArchiver(store ObjectStore, bucket, prefix string) *Archiver {
	return &Archiver{store: store, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// ReportKey returns the object key of a report
func (a *Archiver) ReportKey(r types.SyncReport) string {
	name := fmt.Sprintf("%s-%s-%s.json", r.StartedAt.UTC().Format("20060102T150405Z"), r.Operation, r.RunID)
	return path.Join(a.prefix, "reports", name)
}

// Save implements the workflow report sink
func (a *Archiver) Save(ctx context.Context, r types.SyncReport) error {
	return a.put(ctx, a.ReportKey(r), r)
}

// SaveComparison stores the full partition lists of a comparison
func (a *Archiver) SaveComparison(ctx context.Context, runID string, c types.ComparisonResult) (string, error) {
	key := path.Join(a.prefix, "comparisons", fmt.Sprintf("%s-%s.json", c.KnowledgeSourceID, runID))
	return key, a.put(ctx, key, c)
}

// Reports lists archived report keys
func (a *Archiver) Reports(ctx context.Context) ([]string, error) {
	keys, err := a.store.List(ctx, a.bucket, path.Join(a.prefix, "reports")+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return keys, nil
}

func (a *Archiver) put(ctx context.Context, key string, v interface{}) error {
	exists, err := a.store.Exists(ctx, a.bucket, key)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("object %s already exists", key)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := a.store.Put(ctx, a.bucket, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
