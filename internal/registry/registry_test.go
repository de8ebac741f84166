package registry

import (
	"fmt"
	"sync"
	"testing"

	"chat-realtime/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id     string
	userID string
	closed bool
}

func (f *fakeConn) ID() string             { return f.id }
func (f *fakeConn) UserID() string         { return f.userID }
func (f *fakeConn) Send(string, any) error { return nil }
func (f *fakeConn) Close() error           { f.closed = true; return nil }

func newTestRegistry() *Registry {
	return New(logger.Discard(), nil)
}

func TestRegisterAndLookup(t *testing.T) {
	r := newTestRegistry()
	c1 := &fakeConn{id: "c1", userID: "u1"}

	assert.Nil(t, r.Register("u1", c1))

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, c1, got)
	assert.Equal(t, 1, r.Count())
	assert.True(t, r.IsOnline("u1"))
	assert.False(t, r.IsOnline("u2"))
}

func TestSecondConnectionReplacesWithoutClosing(t *testing.T) {
	r := newTestRegistry()
	c1 := &fakeConn{id: "c1", userID: "u1"}
	c2 := &fakeConn{id: "c2", userID: "u1"}

	r.Register("u1", c1)
	replaced := r.Register("u1", c2)

	assert.Same(t, c1, replaced)
	assert.False(t, c1.closed, "replaced connection must stay open")

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, c2, got)
	assert.Equal(t, 1, r.Count())
}

func TestReRegisterSameConnectionIsNotAReplacement(t *testing.T) {
	r := newTestRegistry()
	c1 := &fakeConn{id: "c1", userID: "u1"}
	r.Register("u1", c1)
	assert.Nil(t, r.Register("u1", c1))
}

func TestUnregisterRemovesMatchingConnectionOnly(t *testing.T) {
	r := newTestRegistry()
	c1 := &fakeConn{id: "c1", userID: "u1"}
	c2 := &fakeConn{id: "c2", userID: "u1"}
	r.Register("u1", c1)
	r.Register("u1", c2)

	// c1 was replaced; its disconnect must not evict c2
	_, ok := r.Unregister("c1")
	assert.False(t, ok)
	got, _ := r.Lookup("u1")
	assert.Same(t, c2, got)

	userID, ok := r.Unregister("c2")
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
	_, ok = r.Lookup("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestUnregisterUnknownConnection(t *testing.T) {
	r := newTestRegistry()
	r.Register("u1", &fakeConn{id: "c1", userID: "u1"})

	_, ok := r.Unregister("nope")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())
}

func TestOnlineUsers(t *testing.T) {
	r := newTestRegistry()
	r.Register("u1", &fakeConn{id: "c1", userID: "u1"})
	r.Register("u2", &fakeConn{id: "c2", userID: "u2"})

	assert.ElementsMatch(t, []string{"u1", "u2"}, r.OnlineUsers())
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			uid := fmt.Sprintf("u%d", i)
			r.Register(uid, &fakeConn{id: id, userID: uid})
			r.Lookup(uid)
			if i%2 == 0 {
				r.Unregister(id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Count())
}
