package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "r-1", ReportJSON, []byte(`{}`)))
	require.NoError(t, s.Put(ctx, "r-1", "/"+ReportHTML, []byte("<html>")))
	require.NoError(t, s.Put(ctx, "r-2", ReportJSON, []byte(`[]`)))

	got, err := s.Get(ctx, "r-1", ReportHTML)
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(got))

	names, err := s.List(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{ReportHTML, ReportJSON}, names)

	_, err = s.Get(ctx, "r-3", ReportJSON)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.Put(ctx, " ", ReportJSON, nil))

	url, err := s.GetURL(ctx, "r-1", ReportJSON)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestNewS3Store_RequiresConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{Endpoint: "localhost:9000", Bucket: "reports"})
	assert.Error(t, err)

	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "reports"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType(ReportJSON))
	assert.Equal(t, "text/html; charset=utf-8", contentType(ReportHTML))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}
