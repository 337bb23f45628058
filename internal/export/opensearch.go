package export

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

// OpenSearchSink bulk-indexes records into a daily index.
type OpenSearchSink struct {
	client      *opensearch.Client
	indexPrefix string
}

// openSearchDoc is the indexed document shape.
type openSearchDoc struct {
	RunID string `json:"run_id"`
	dataset.Record
}

// NewOpenSearchSink creates a client for cfg.URL.
func NewOpenSearchSink(cfg config.OpenSearchConfig) (*OpenSearchSink, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLSSkipVerify,
		},
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &OpenSearchSink{client: client, indexPrefix: cfg.IndexPrefix}, nil
}

func (s *OpenSearchSink) Name() string { return "opensearch" }

// IndexName returns the index a run is written to, dated by its window end.
func (s *OpenSearchSink) IndexName(ds *dataset.Dataset) string {
	return fmt.Sprintf("%s-%s", s.indexPrefix, ds.WindowEnd.UTC().Format("2006.01.02"))
}

// Export indexes every record. Per-item failures are counted and the first
// one is reported.
func (s *OpenSearchSink) Export(ctx context.Context, ds *dataset.Dataset) error {
	if len(ds.Records) == 0 {
		return nil
	}

	bi, err := opensearchutil.NewBulkIndexer(opensearchutil.BulkIndexerConfig{
		Client:     s.client,
		Index:      s.IndexName(ds),
		NumWorkers: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var (
		failed   atomic.Int64
		mu       sync.Mutex
		firstErr error
	)
	onFailure := func(_ context.Context, _ opensearchutil.BulkIndexerItem, res opensearchutil.BulkIndexerResponseItem, err error) {
		failed.Add(1)
		mu.Lock()
		defer mu.Unlock()
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
		} else {
			firstErr = fmt.Errorf("%s: %s", res.Error.Type, res.Error.Reason)
		}
	}

	var addErrs []error
	for _, r := range ds.Records {
		data, err := json.Marshal(openSearchDoc{RunID: ds.RunID, Record: r})
		if err != nil {
			addErrs = append(addErrs, fmt.Errorf("marshal record: %w", err))
			break
		}
		if err := bi.Add(ctx, opensearchutil.BulkIndexerItem{
			Action:    "index",
			Body:      bytes.NewReader(data),
			OnFailure: onFailure,
		}); err != nil {
			addErrs = append(addErrs, err)
			break
		}
	}

	if err := bi.Close(ctx); err != nil {
		addErrs = append(addErrs, fmt.Errorf("bulk indexer close: %w", err))
	}
	if len(addErrs) > 0 {
		return errors.Join(addErrs...)
	}

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d documents failed: %w", n, len(ds.Records), firstErr)
	}
	return nil
}

func (s *OpenSearchSink) Close() error { return nil }
