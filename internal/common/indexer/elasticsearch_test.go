package indexer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/pl-crawler/internal/domain"
)

func TestBulkBody(t *testing.T) {
	idx := &ElasticsearchIndexer{indexName: "players"}
	body, err := idx.bulkBody([]*domain.Player{
		{ID: "a", Name: "Bukayo Saka", Club: "Arsenal"},
		{ID: "b", Name: "Mohamed Salah", Club: "Liverpool"},
	})
	require.NoError(t, err)

	var lines []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 4)
	assert.Equal(t, map[string]any{"index": map[string]any{"_index": "players", "_id": "a"}}, lines[0])
	assert.Equal(t, "Bukayo Saka", lines[1]["name"])
	assert.Equal(t, "b", lines[2]["index"].(map[string]any)["_id"])
	assert.Equal(t, "Liverpool", lines[3]["club"])
}

func TestElasticsearchBulkIndex(t *testing.T) {
	var bulkRequests int
	var gotBody []byte
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/_bulk":
			bulkRequests++
			gotBody, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{"errors":false,"items":[{"index":{"_id":"a","status":201}}]}`))
		default:
			w.Write([]byte(`{"name":"test","cluster_name":"test","version":{"number":"8.19.1"},"tagline":"You Know, for Search"}`))
		}
	}))
	defer testServer.Close()

	idx, err := NewElasticsearchIndexer([]string{testServer.URL}, "players")
	require.NoError(t, err)

	require.NoError(t, idx.BulkIndex(context.Background(), nil))
	assert.Zero(t, bulkRequests)

	require.NoError(t, idx.BulkIndex(context.Background(), []*domain.Player{{ID: "a", Name: "Bukayo Saka"}}))
	assert.Equal(t, 1, bulkRequests)
	assert.Contains(t, string(gotBody), `"_id":"a"`)
}
