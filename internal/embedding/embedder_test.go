package embedding

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/logger"
)

type mockEmbeddingService struct {
	vector []float32
	err    error
	inputs []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.inputs = append(m.inputs, text)
	return m.vector, m.err
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.vector) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

func TestEmbedder_TruncatesInput(t *testing.T) {
	svc := &mockEmbeddingService{vector: []float32{1, 2, 3}}
	e := NewEmbedder(svc)

	text := strings.Repeat("é", MaxInputChars+500)
	v := e.Embed(context.Background(), text)

	assert.Equal(t, []float32{1, 2, 3}, v)
	require.Len(t, svc.inputs, 1)
	assert.Equal(t, MaxInputChars, len([]rune(svc.inputs[0])))
}

func TestEmbedder_ShortInputUnchanged(t *testing.T) {
	svc := &mockEmbeddingService{vector: []float32{0.5}}
	e := NewEmbedder(svc)

	e.Embed(context.Background(), "attention is all you need")

	require.Len(t, svc.inputs, 1)
	assert.Equal(t, "attention is all you need", svc.inputs[0])
}

func TestEmbedder_EmptyResultYieldsEmptyVector(t *testing.T) {
	e := NewEmbedder(&mockEmbeddingService{})

	v := e.Embed(context.Background(), "text")
	assert.NotNil(t, v)
	assert.Empty(t, v)
	assert.Empty(t, e.EmbedEncoded(context.Background(), "text"))
}

func TestEmbedder_ServiceErrorIsLoggedAndSwallowed(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	e := NewEmbedder(&mockEmbeddingService{err: errors.New("connection refused")})

	v := e.Embed(context.Background(), "text")
	assert.Empty(t, v)
	assert.Contains(t, buf.String(), domain.ErrEmbeddingUnavailable.Error())
	assert.Contains(t, buf.String(), "connection refused")
}

func TestEmbedder_NilService(t *testing.T) {
	svc := &mockEmbeddingService{vector: []float32{1}}
	assert.Empty(t, NewEmbedder(nil).Embed(context.Background(), "text"))

	e := NewEmbedder(svc)
	assert.Empty(t, e.Embed(context.Background(), ""))
	assert.Empty(t, svc.inputs)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}
