package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/clusterscope/internal/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAppendGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sess, err := s.Create(ctx, "电子信息", "杭州")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	_, err = s.Append(ctx, sess.ID,
		model.Message{Role: model.RoleUser, Content: "杭州电子信息产业如何？"},
		model.Message{Role: model.RoleAssistant, Content: "发展良好。"},
	)
	require.NoError(t, err)

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "电子信息", got.Industry)
	assert.Equal(t, "杭州", got.Region)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, model.RoleAssistant, got.Messages[1].Role)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestGetUnknown(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Append(context.Background(), "missing", model.Message{Role: model.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentAppend(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sess, err := s.Create(ctx, "", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Append(ctx, sess.ID, model.Message{Role: model.RoleUser, Content: "hi"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 20)
}

func TestListAndDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	a, err := s.Create(ctx, "", "")
	require.NoError(t, err)
	b, err := s.Create(ctx, "", "")
	require.NoError(t, err)
	_, err = s.Append(ctx, a.ID, model.Message{Role: model.RoleUser, Content: "latest"})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)

	require.NoError(t, s.Delete(ctx, b.ID))
	require.NoError(t, s.Delete(ctx, b.ID))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
