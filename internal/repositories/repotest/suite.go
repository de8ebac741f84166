// Package repotest holds the behavioural test suite every message
// repository backend must pass.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"chat-realtime/internal/models"
	"chat-realtime/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingID is well-formed for every backend but never issued
const missingID = "000000000000000000000000"

// Factory returns an empty repository. Backends sharing a database should
// hand out a fresh collection or schema per call.
type Factory func(t *testing.T) services.MessageRepository

func create(t *testing.T, repo services.MessageRepository, channelID, senderID, content string) *models.Message {
	t.Helper()
	msg := &models.Message{ChannelID: channelID, SenderID: senderID, SenderName: "name-" + senderID, Content: content}
	require.NoError(t, repo.Create(context.Background(), msg))
	require.NotEmpty(t, msg.ID)
	return msg
}

// Run executes the full suite against repositories produced by newRepo
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("CreateAndFindByChannelAscending", func(t *testing.T) {
		repo := newRepo(t)
		a := create(t, repo, "c1", "u1", "first")
		b := create(t, repo, "c1", "u2", "second")
		create(t, repo, "c2", "u1", "elsewhere")

		msgs, err := repo.FindByChannel(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, a.ID, msgs[0].ID)
		assert.Equal(t, b.ID, msgs[1].ID)
		assert.False(t, msgs[1].CreatedAt.Before(msgs[0].CreatedAt))
		assert.False(t, msgs[0].Edited)
		assert.Empty(t, msgs[0].ReadBy)
		assert.Equal(t, "name-u1", msgs[0].SenderName)
	})

	t.Run("FindByChannelEmpty", func(t *testing.T) {
		repo := newRepo(t)
		msgs, err := repo.FindByChannel(ctx, "none")
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("FindByIDNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(ctx, missingID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("UpdateContentSetsEdited", func(t *testing.T) {
		repo := newRepo(t)
		m := create(t, repo, "c1", "u1", "draft")

		updated, err := repo.UpdateContent(ctx, m.ID, "final")
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Content)
		assert.True(t, updated.Edited)

		got, err := repo.FindByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Content)
		assert.True(t, got.Edited)

		_, err = repo.UpdateContent(ctx, missingID, "x")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		m := create(t, repo, "c1", "u1", "bye")
		keep := create(t, repo, "c1", "u1", "stay")

		require.NoError(t, repo.Delete(ctx, m.ID))
		_, err := repo.FindByID(ctx, m.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		msgs, err := repo.FindByChannel(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, keep.ID, msgs[0].ID)

		assert.ErrorIs(t, repo.Delete(ctx, m.ID), models.ErrNotFound)
	})

	t.Run("FindLast", func(t *testing.T) {
		repo := newRepo(t)
		last, err := repo.FindLast(ctx, "c1")
		require.NoError(t, err)
		assert.Nil(t, last)

		create(t, repo, "c1", "u1", "one")
		two := create(t, repo, "c1", "u1", "two")

		last, err = repo.FindLast(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, two.ID, last.ID)
	})

	t.Run("MarkReadAndCountUnread", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "c1", "u2", "a")
		create(t, repo, "c1", "u2", "b")
		create(t, repo, "c2", "u2", "other channel")

		n, err := repo.CountUnread(ctx, "c1", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		changed, err := repo.MarkRead(ctx, "c1", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), changed)

		n, err = repo.CountUnread(ctx, "c1", "u1")
		require.NoError(t, err)
		assert.Zero(t, n)

		changed, err = repo.MarkRead(ctx, "c1", "u1")
		require.NoError(t, err)
		assert.Zero(t, changed, "second markRead must be a no-op")

		n, err = repo.CountUnread(ctx, "c2", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		msgs, err := repo.FindByChannel(ctx, "c1")
		require.NoError(t, err)
		for _, m := range msgs {
			assert.Equal(t, []string{"u1"}, m.ReadBy)
		}

		create(t, repo, "c1", "u2", "c")
		n, err = repo.CountUnread(ctx, "c1", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("MarkReadConcurrentWithCreate", func(t *testing.T) {
		repo := newRepo(t)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			i := i
			wg.Add(2)
			go func() {
				defer wg.Done()
				msg := &models.Message{ChannelID: "busy", SenderID: "u2", Content: fmt.Sprintf("m%d", i)}
				assert.NoError(t, repo.Create(ctx, msg))
			}()
			go func() {
				defer wg.Done()
				_, err := repo.MarkRead(ctx, "busy", "u1")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		_, err := repo.MarkRead(ctx, "busy", "u1")
		require.NoError(t, err)
		n, err := repo.CountUnread(ctx, "busy", "u1")
		require.NoError(t, err)
		assert.Zero(t, n)

		msgs, err := repo.FindByChannel(ctx, "busy")
		require.NoError(t, err)
		require.Len(t, msgs, 20)
		for _, m := range msgs {
			assert.Equal(t, []string{"u1"}, m.ReadBy, "reader recorded exactly once")
		}
	})

	t.Run("SearchCaseInsensitiveNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		older := create(t, repo, "c1", "u1", "Hello World")
		create(t, repo, "c1", "u1", "nothing here")
		newer := create(t, repo, "c1", "u1", "say HELLO again")
		create(t, repo, "c2", "u1", "hello from elsewhere")

		msgs, err := repo.Search(ctx, "c1", "hello", 10)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, newer.ID, msgs[0].ID)
		assert.Equal(t, older.ID, msgs[1].ID)

		msgs, err = repo.Search(ctx, "c1", "hello", 1)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, newer.ID, msgs[0].ID)
	})

	t.Run("SearchTreatsQueryLiterally", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "c1", "u1", "price is $5.00 (approx)")
		create(t, repo, "c1", "u1", "price is 5500 approx")

		msgs, err := repo.Search(ctx, "c1", "$5.00 (", 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Content, "$5.00")

		msgs, err = repo.Search(ctx, "c1", "100%", 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}
