package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/retry"
)

type scripted struct {
	errs  []error
	calls int
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Complete(ctx context.Context, _ []model.Message, _ Options) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "ok", nil
}

func fastPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestOpenAIClient(t *testing.T) {
	var got openAIRequest
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if calls == 1 {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"杭州电子信息产业基础扎实。"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/", Options{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 2000})
	defer c.Close()
	client := WithRetry(c, fastPolicy(), nil)

	text, err := client.Complete(context.Background(), []model.Message{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "问题"},
	}, Options{MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "杭州电子信息产业基础扎实。", text)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 50, got.MaxTokens)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestOpenAIClientPermanentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL, Options{Model: "x"})
	_, err := c.Complete(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}}, Options{})
	require.Error(t, err)
	assert.False(t, retry.IsRetryable(err))
	assert.Contains(t, err.Error(), "400")
}

func TestRetryExhaustion(t *testing.T) {
	busy := &retry.RetryableError{StatusCode: 503}
	s := &scripted{errs: []error{busy, busy, busy, busy}}
	_, err := WithRetry(s, fastPolicy(), nil).Complete(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, retry.ErrRetriesExhausted)
	assert.Equal(t, 3, s.calls)
}

func TestInstrumentedRecordsOutcomes(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	s := &scripted{errs: []error{errors.New("boom"), nil}}
	c := &Instrumented{Client: s, Stats: stats}

	_, err := c.Complete(context.Background(), nil, Options{})
	require.Error(t, err)
	_, err = c.Complete(context.Background(), nil, Options{})
	require.NoError(t, err)
	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, "scripted", c.Name())
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Complete(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClaudeMessagesRemapSystemRole(t *testing.T) {
	msgs := claudeMessages([]model.Message{
		{Role: model.RoleSystem, Content: "instructions"},
		{Role: model.RoleUser, Content: "q"},
		{Role: model.RoleAssistant, Content: "a"},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, "instructions", msgs[0].Content[0].OfText.Text)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[2].Role)
}

func TestClaudeMessagesPrependsPromptWithoutSystem(t *testing.T) {
	msgs := claudeMessages([]model.Message{{Role: model.RoleUser, Content: "q"}})
	require.Len(t, msgs, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, SystemPrompt, msgs[0].Content[0].OfText.Text)
	assert.Equal(t, "q", msgs[1].Content[0].OfText.Text)
}

func TestOptionsDefaults(t *testing.T) {
	d := Options{Model: "m", Temperature: 0.7}
	got := d.Defaults(Options{Temperature: 0.2})
	assert.Equal(t, Options{Model: "m", Temperature: 0.2, MaxTokens: 2000}, got)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("a"))
	assert.Equal(t, 4, EstimateTokens("杭州产业"))
	assert.Equal(t, 3, EstimateTokens("one two x"))
}

func TestTrimHistoryKeepsNewest(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleUser, Content: strings.Repeat("旧", 10)},
		{Role: model.RoleAssistant, Content: strings.Repeat("中", 5)},
		{Role: model.RoleUser, Content: strings.Repeat("新", 5)},
	}
	got := TrimHistory(history, 12)
	require.Len(t, got, 2)
	assert.Equal(t, history[1:], got)

	assert.Len(t, TrimHistory(history, 0), 3)
	assert.Empty(t, TrimHistory(history, 2))
}

func TestBuildChatMessages(t *testing.T) {
	history := []model.Message{{Role: model.RoleUser, Content: "earlier"}}
	msgs := BuildChatMessages(history, "ctx text", "question?")
	require.Len(t, msgs, 3)
	assert.Equal(t, model.RoleSystem, msgs[0].Role)
	assert.Equal(t, "earlier", msgs[1].Content)
	assert.Contains(t, msgs[2].Content, "ctx text")
	assert.True(t, strings.HasSuffix(msgs[2].Content, "question?"))

	msgs = BuildChatMessages(nil, "  ", "q")
	assert.Equal(t, "q", msgs[1].Content)
}
