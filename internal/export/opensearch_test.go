package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/apilog-generator/internal/config"
)

type bulkServer struct {
	mu      sync.Mutex
	paths   []string
	docs    []map[string]any
	failAll bool
}

func (b *bulkServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !strings.HasSuffix(r.URL.Path, "/_bulk") {
		fmt.Fprint(w, `{"version":{"number":"2.11.0","distribution":"opensearch"}}`)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append(b.paths, r.URL.Path)

	var items []string
	scanner := bufio.NewScanner(r.Body)
	line := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		line++
		if line%2 == 1 {
			continue
		}
		var doc map[string]any
		_ = json.Unmarshal(scanner.Bytes(), &doc)
		b.docs = append(b.docs, doc)

		if b.failAll {
			items = append(items, `{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"failed to parse field [date]"}}}`)
		} else {
			items = append(items, `{"index":{"status":201,"result":"created"}}`)
		}
	}

	fmt.Fprintf(w, `{"took":1,"errors":%t,"items":[%s]}`, b.failAll, strings.Join(items, ","))
}

func newTestOpenSearchSink(t *testing.T, srv *bulkServer) *OpenSearchSink {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	sink, err := NewOpenSearchSink(config.OpenSearchConfig{
		URL:         ts.URL,
		IndexPrefix: "apigen-responses",
	})
	require.NoError(t, err)
	return sink
}

func TestOpenSearchSink_Export(t *testing.T) {
	srv := &bulkServer{}
	sink := newTestOpenSearchSink(t, srv)
	ds := testDataset()

	assert.Equal(t, "apigen-responses-2026.10.19", sink.IndexName(ds))
	require.NoError(t, sink.Export(context.Background(), ds))

	require.Len(t, srv.docs, 3)
	assert.Equal(t, []string{"/apigen-responses-2026.10.19/_bulk"}, srv.paths)
	assert.Equal(t, ds.RunID, srv.docs[0]["run_id"])
	assert.Equal(t, "Claims", srv.docs[0]["category"])
	assert.Equal(t, 612.5, srv.docs[1]["responseTime"])
	require.NoError(t, sink.Close())
}

func TestOpenSearchSink_ItemFailures(t *testing.T) {
	sink := newTestOpenSearchSink(t, &bulkServer{failAll: true})

	err := sink.Export(context.Background(), testDataset())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 of 3 documents failed")
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}

func TestOpenSearchSink_EmptyDataset(t *testing.T) {
	srv := &bulkServer{}
	sink := newTestOpenSearchSink(t, srv)

	ds := testDataset()
	ds.Records = nil
	require.NoError(t, sink.Export(context.Background(), ds))
	assert.Empty(t, srv.paths)
}

func TestOpenSearchSink_MarshalFailureClosesIndexer(t *testing.T) {
	srv := &bulkServer{}
	sink := newTestOpenSearchSink(t, srv)

	ds := testDataset()
	ds.Records[0].ResponseTime = math.NaN()

	err := sink.Export(context.Background(), ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal record")
	assert.Empty(t, srv.paths, "nothing is flushed once a record fails to encode")
}
