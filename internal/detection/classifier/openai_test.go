package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsar/internal/detection/catalog"
)

type fakeCompleter struct {
	reply string
	err   error
	got   openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("parses known categories and drops unknown ones", func(t *testing.T) {
		api := &fakeCompleter{reply: `{"categories":[{"category":"health","confidence":0.8},{"category":"ASTROLOGY","confidence":0.9}]}`}
		c := newWithAPI(api, WithModel("test-model"))

		got, err := c.Classify(ctx, "some text")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, catalog.CategoryHealth, got[0].Category)
		assert.Equal(t, 0.8, got[0].Confidence)
		assert.Equal(t, "test-model", api.got.Model)
		assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, api.got.ResponseFormat.Type)
	})

	t.Run("long input is clipped", func(t *testing.T) {
		api := &fakeCompleter{reply: `{"categories":[]}`}
		c := newWithAPI(api)
		_, err := c.Classify(ctx, strings.Repeat("ä", maxPromptBytes))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(api.got.Messages[1].Content), maxPromptBytes)
	})

	t.Run("transport error is returned", func(t *testing.T) {
		c := newWithAPI(&fakeCompleter{err: errors.New("429")})
		_, err := c.Classify(ctx, "x")
		assert.Error(t, err)
	})

	t.Run("non json reply is an error", func(t *testing.T) {
		c := newWithAPI(&fakeCompleter{reply: "HEALTH"})
		_, err := c.Classify(ctx, "x")
		assert.Error(t, err)
	})

	t.Run("api key is required", func(t *testing.T) {
		_, err := New("", "")
		assert.Error(t, err)
	})
}
