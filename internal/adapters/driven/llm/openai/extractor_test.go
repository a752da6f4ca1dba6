package openai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/embedding"
	"github.com/phonetonote/paperweight/internal/ratelimit"
)

type fakeModel struct {
	response *llms.ContentResponse
	err      error

	messages []llms.MessageContent
	options  llms.CallOptions
}

func (m *fakeModel) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	return m.response, m.err
}

func (m *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func toolResponse(name, arguments string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   "call_1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      name,
					Arguments: arguments,
				},
			}},
		}},
	}
}

func newTestExtractor(model llms.Model) *Extractor {
	return NewExtractorWithModel(model, Config{
		Model:   "gpt-test",
		Limiter: ratelimit.NewWithConfig(ratelimit.Config{}),
	})
}

func TestNewExtractor_RequiresAPIKey(t *testing.T) {
	_, err := NewExtractor(Config{})
	assert.Error(t, err)
}

func TestNewExtractor_Defaults(t *testing.T) {
	e, err := NewExtractor(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, e.ModelName())
	assert.Equal(t, DefaultTimeout, e.timeout)
	assert.NoError(t, e.Close())
}

func TestExtract_ForcesFindDataTool(t *testing.T) {
	model := &fakeModel{response: toolResponse("find_data", `{"title":"Deep Residual Learning","authors":["Kaiming He"]}`)}
	e := newTestExtractor(model)

	md, err := e.Extract(context.Background(), "Deep Residual Learning for Image Recognition ...")
	require.NoError(t, err)
	assert.Equal(t, "Deep Residual Learning", md.Title)
	assert.Equal(t, []string{"Kaiming He"}, md.Authors)

	require.Len(t, model.options.Tools, 1)
	assert.Equal(t, "find_data", model.options.Tools[0].Function.Name)

	choice, ok := model.options.ToolChoice.(llms.ToolChoice)
	require.True(t, ok)
	assert.Equal(t, "function", choice.Type)
	assert.Equal(t, "find_data", choice.Function.Name)
	assert.Equal(t, "gpt-test", model.options.Model)
}

func TestExtract_TruncatesInput(t *testing.T) {
	model := &fakeModel{response: toolResponse("find_data", `{"title":"T"}`)}
	e := newTestExtractor(model)

	_, err := e.Extract(context.Background(), strings.Repeat("x", embedding.MaxInputChars*2))
	require.NoError(t, err)

	require.Len(t, model.messages, 1)
	require.Len(t, model.messages[0].Parts, 1)
	part, ok := model.messages[0].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Len(t, part.Text, embedding.MaxInputChars)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[0].Role)
}

func TestExtract_LegacyFunctionCall(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			FuncCall: &llms.FunctionCall{Name: "find_data", Arguments: `{"title":"Legacy"}`},
		}},
	}}
	e := newTestExtractor(model)

	md, err := e.Extract(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Legacy", md.Title)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"model error", &fakeModel{err: errors.New("503 service unavailable")}},
		{"nil response", &fakeModel{}},
		{"no choices", &fakeModel{response: &llms.ContentResponse{}}},
		{"plain content", &fakeModel{response: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "The title is X"}},
		}}},
		{"other tool", &fakeModel{response: toolResponse("lookup", `{"title":"X"}`)}},
		{"invalid json", &fakeModel{response: toolResponse("find_data", `{"title":`)}},
		{"missing title", &fakeModel{response: toolResponse("find_data", `{"authors":["A"]}`)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestExtractor(tc.model)
			md, err := e.Extract(context.Background(), "text")
			assert.Nil(t, md)
			assert.ErrorIs(t, err, domain.ErrExtractionFailed)
		})
	}
}

func TestExtract_CancelledWhileRateLimited(t *testing.T) {
	limiter := ratelimit.NewWithConfig(ratelimit.Config{})
	limiter.RecordRateLimitError(time.Hour)
	e := NewExtractorWithModel(&fakeModel{}, Config{Limiter: limiter})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}
