package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	at := time.Date(2025, 11, 3, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "reports/c1/2025/11/r1.txt", Key("c1", "r1", at))
}

func TestConfigValidate(t *testing.T) {
	assert.False(t, Config{}.Enabled())

	err := Config{Endpoint: "localhost:9000", Bucket: "esg"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access key, secret key")

	cfg := Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "esg"}
	assert.True(t, cfg.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestNewMinIORejectsIncompleteConfig(t *testing.T) {
	_, err := NewMinIO(context.Background(), Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	body := []byte("report")
	require.NoError(t, m.Put(ctx, "k", body, "text/plain"))
	body[0] = 'R'

	got, ok := m.Object("k")
	require.True(t, ok)
	assert.Equal(t, "report", string(got))

	m.FailWith(errors.New("bucket unavailable"))
	assert.Error(t, m.Put(ctx, "k2", body, "text/plain"))
}
