package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/clusterscope/internal/llm"
	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/session"
	"github.com/dgallion1/clusterscope/internal/vectorindex"
)

type fakeSearch struct {
	last vectorindex.Query
}

func (f *fakeSearch) Search(_ context.Context, q vectorindex.Query) (string, []model.Source, error) {
	f.last = q
	return "杭州电子信息产业规模超万亿", []model.Source{{Title: "报告", Score: 1, Industry: "电子信息", Region: "杭州"}}, nil
}

type fakeLLM struct {
	got   []model.Message
	reply string
	err   error
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Complete(_ context.Context, msgs []model.Message, _ llm.Options) (string, error) {
	f.got = msgs
	return f.reply, f.err
}

func newService(t *testing.T, client llm.Client) (*Service, *fakeSearch, *session.Store) {
	t.Helper()
	sessions, err := session.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })
	search := &fakeSearch{}
	return NewService(search, client, sessions, 1000, nil), search, sessions
}

func TestAskStartsSessionAndRecordsTurns(t *testing.T) {
	client := &fakeLLM{reply: "杭州的电子信息产业具备较强竞争力。"}
	svc, search, _ := newService(t, client)
	ctx := context.Background()

	resp, err := svc.Ask(ctx, Request{Message: "杭州电子信息产业怎么样？", Industry: "电子信息", Region: "杭州"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, client.reply, resp.Reply)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "电子信息", search.last.Industry)

	require.Len(t, client.got, 2)
	assert.Equal(t, model.RoleSystem, client.got[0].Role)
	assert.Contains(t, client.got[1].Content, "杭州电子信息产业规模超万亿")

	// Second turn inherits the session filters and sees the first turn.
	_, err = svc.Ask(ctx, Request{SessionID: resp.SessionID, Message: "有哪些挑战？"})
	require.NoError(t, err)
	assert.Equal(t, "杭州", search.last.Region)
	require.Len(t, client.got, 4)
	assert.Equal(t, "杭州电子信息产业怎么样？", client.got[1].Content)

	transcript, err := svc.Transcript(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Len(t, transcript, 4)
}

func TestAskLLMFailureKeepsTranscript(t *testing.T) {
	client := &fakeLLM{err: llm.ErrNotConfigured}
	svc, _, sessions := newService(t, client)
	ctx := context.Background()

	sess, err := sessions.Create(ctx, "", "")
	require.NoError(t, err)

	_, err = svc.Ask(ctx, Request{SessionID: sess.ID, Message: "hello"})
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	got, err := sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestAskValidation(t *testing.T) {
	svc, _, _ := newService(t, &fakeLLM{reply: "x"})
	_, err := svc.Ask(context.Background(), Request{Message: "  "})
	assert.Error(t, err)

	_, err = svc.Ask(context.Background(), Request{SessionID: "nope", Message: "hi"})
	assert.True(t, errors.Is(err, session.ErrNotFound))
}
