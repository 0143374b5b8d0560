package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "session.json")
	return NewFileStore(path, zap.NewNop().Sugar())
}

func TestFileStoreSaveLoad(t *testing.T) {
	fs := newTestFileStore(t)

	s := NewStore("Чат 1")
	id := s.ActiveThreadID()
	require.NoError(t, s.AppendMessages(id,
		NewTextMessage(RoleUser, "привет"),
		NewImageMessage("aW1n", "кот на подоконнике"),
	))

	fs.Save(s.Snapshot())

	loaded, ok := fs.Load()
	require.True(t, ok)
	assert.Equal(t, id, loaded.ActiveThreadID)
	require.Len(t, loaded.Threads, 1)
	msgs := loaded.Threads[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, KindText, msgs[0].Kind)
	assert.Equal(t, "привет", msgs[0].Content)
	assert.Equal(t, KindImage, msgs[1].Kind)
	assert.Equal(t, "aW1n", msgs[1].ImageData)
	assert.Equal(t, "кот на подоконнике", msgs[1].Description)
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	fs := newTestFileStore(t)

	_, ok := fs.Load()
	assert.False(t, ok)
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{обрыв"), 0o644))
	fs := NewFileStore(path, zap.NewNop().Sugar())

	_, ok := fs.Load()
	assert.False(t, ok)
}

func TestFileStoreLoadEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activeThreadId":"","threads":[]}`), 0o644))
	fs := NewFileStore(path, zap.NewNop().Sugar())

	_, ok := fs.Load()
	assert.False(t, ok)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	fs := newTestFileStore(t)

	s := NewStore("Чат 1")
	fs.Save(s.Snapshot())

	s.CreateThread("Второй")
	fs.Save(s.Snapshot())

	loaded, ok := fs.Load()
	require.True(t, ok)
	assert.Len(t, loaded.Threads, 2)
}
