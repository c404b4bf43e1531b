package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/pl-crawler/internal/domain"
)

func TestDecode(t *testing.T) {
	raw := &domain.RawPlayer{
		ID:          "abc",
		Source:      string(domain.SourceAppearances),
		Page:        2,
		Data:        domain.Record{domain.FieldName: "Bukayo Saka", domain.FieldAppearances: 150},
		ExtractedAt: time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	got, err := decode(string(data))
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, "Bukayo Saka", got.Data.String(domain.FieldName))
	n, ok := got.Data.Int(domain.FieldAppearances)
	assert.True(t, ok)
	assert.Equal(t, 150, n)

	_, err = decode("{not json")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, DefaultQueue, NewPublisher(nil, "").queueName)
	c := NewConsumer(nil, "", 0)
	assert.Equal(t, DefaultQueue, c.queueName)
	assert.Equal(t, 5*time.Second, c.timeout)
}
