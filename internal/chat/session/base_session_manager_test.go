package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edchat/edchat-go/pkg/util/merr"
)

func newManagedSession(t *testing.T, id uint64) *BaseSession {
	t.Helper()
	sess := NewBaseSession(context.Background(), id, newStubConn(), 1, nil)
	t.Cleanup(func() { sess.Close() })
	return sess
}

func TestSessionManagerRegister(t *testing.T) {
	m := NewBaseSessionManager()

	s1 := newManagedSession(t, 1)
	require.NoError(t, m.Register(s1))
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(1)
	require.True(t, ok)
	assert.Same(t, s1, got)

	// 重复 ID 注册失败，不覆盖旧会话。
	s1dup := newManagedSession(t, 1)
	err := m.Register(s1dup)
	assert.ErrorIs(t, err, merr.ErrSessionDuplicated)
	got, _ = m.Get(1)
	assert.Same(t, s1, got)

	// nil 会话为 no-op。
	assert.NoError(t, m.Register(nil))
	assert.Equal(t, 1, m.Count())
}

func TestSessionManagerUnregister(t *testing.T) {
	m := NewBaseSessionManager()
	require.NoError(t, m.Register(newManagedSession(t, 1)))

	m.Unregister(1)
	_, ok := m.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())

	// 重复注销同样是 no-op。
	m.Unregister(1)
	m.Unregister(2)
}

func TestSessionManagerRange(t *testing.T) {
	m := NewBaseSessionManager()
	for id := uint64(1); id <= 3; id++ {
		require.NoError(t, m.Register(newManagedSession(t, id)))
	}

	seen := make(map[uint64]bool)
	m.Range(func(sess Session) bool {
		seen[sess.ID()] = true
		return true
	})
	assert.Len(t, seen, 3)

	// 回调返回 false 时提前终止遍历。
	count := 0
	m.Range(func(Session) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)

	m.Range(nil)
}

func TestIDAllocator(t *testing.T) {
	var alloc IDAllocator
	assert.Equal(t, uint64(1), alloc.Next())
	assert.Equal(t, uint64(2), alloc.Next())
	assert.Equal(t, uint64(3), alloc.Next())
}
