package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreHasInitialActiveThread(t *testing.T) {
	s := NewStore("Чат 1")

	threads := s.Threads()
	require.Len(t, threads, 1)
	assert.Equal(t, "Чат 1", threads[0].Name)
	assert.Equal(t, threads[0].ID, s.ActiveThreadID())
	assert.Empty(t, threads[0].Messages)
}

func TestCreateThreadDoesNotSwitchActive(t *testing.T) {
	s := NewStore("Чат 1")
	first := s.ActiveThreadID()

	created := s.CreateThread("Второй")

	assert.Equal(t, first, s.ActiveThreadID())
	assert.True(t, s.SelectThread(created.ID))
	assert.Equal(t, created.ID, s.ActiveThreadID())
}

func TestCreateThreadAutoName(t *testing.T) {
	s := NewStore("")
	created := s.CreateThread("  ")

	threads := s.Threads()
	require.Len(t, threads, 2)
	assert.Equal(t, "Чат 1", threads[0].Name)
	assert.Equal(t, "Чат 2", created.Name)
}

func TestSelectUnknownThreadIgnored(t *testing.T) {
	s := NewStore("Чат 1")
	active := s.ActiveThreadID()

	assert.False(t, s.SelectThread("нет-такого"))
	assert.Equal(t, active, s.ActiveThreadID())
}

func TestDeleteLastThreadRejected(t *testing.T) {
	s := NewStore("Чат 1")

	err := s.DeleteThread(s.ActiveThreadID())

	assert.ErrorIs(t, err, ErrLastThread)
	assert.Len(t, s.Threads(), 1)
}

func TestDeleteActiveFallsToMostRecent(t *testing.T) {
	s := NewStore("Чат 1")
	second := s.CreateThread("Второй")
	third := s.CreateThread("Третий")
	require.True(t, s.SelectThread(second.ID))

	require.NoError(t, s.DeleteThread(second.ID))

	assert.Equal(t, third.ID, s.ActiveThreadID())
	assert.Len(t, s.Threads(), 2)
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	s := NewStore("Чат 1")
	active := s.ActiveThreadID()
	second := s.CreateThread("Второй")

	require.NoError(t, s.DeleteThread(second.ID))

	assert.Equal(t, active, s.ActiveThreadID())
}

func TestDeleteUnknownThread(t *testing.T) {
	s := NewStore("Чат 1")
	s.CreateThread("Второй")

	assert.ErrorIs(t, s.DeleteThread("нет-такого"), ErrNoThread)
}

func TestAppendMessagesKeepsOrder(t *testing.T) {
	s := NewStore("Чат 1")
	id := s.ActiveThreadID()

	user := NewTextMessage(RoleUser, "привет")
	reply := NewTextMessage(RoleAssistant, "здравствуй")
	require.NoError(t, s.AppendMessages(id, user, reply))
	require.NoError(t, s.AppendMessages(id, NewTextMessage(RoleUser, "как дела?")))

	msgs := s.ActiveThread().Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "привет", msgs[0].Content)
	assert.Equal(t, "здравствуй", msgs[1].Content)
	assert.Equal(t, "как дела?", msgs[2].Content)
}

func TestAppendToUnknownThread(t *testing.T) {
	s := NewStore("Чат 1")
	err := s.AppendMessages("нет-такого", NewTextMessage(RoleUser, "x"))
	assert.ErrorIs(t, err, ErrNoThread)
}

func TestReadsReturnCopies(t *testing.T) {
	s := NewStore("Чат 1")
	id := s.ActiveThreadID()
	require.NoError(t, s.AppendMessages(id, NewTextMessage(RoleUser, "оригинал")))

	th := s.ActiveThread()
	th.Messages[0].Content = "подмена"
	th.Messages = append(th.Messages, NewTextMessage(RoleUser, "лишнее"))

	again := s.ActiveThread()
	require.Len(t, again.Messages, 1)
	assert.Equal(t, "оригинал", again.Messages[0].Content)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := NewStore("Чат 1")
	second := s.CreateThread("Второй")
	require.NoError(t, s.AppendMessages(second.ID, NewTextMessage(RoleUser, "привет")))
	require.True(t, s.SelectThread(second.ID))

	snap := s.Snapshot()

	restored := NewStore("Другой")
	restored.Restore(snap)

	assert.Equal(t, second.ID, restored.ActiveThreadID())
	threads := restored.Threads()
	require.Len(t, threads, 2)
	require.Len(t, threads[1].Messages, 1)
	assert.Equal(t, "привет", threads[1].Messages[0].Content)
}

func TestRestoreEmptySnapshotIgnored(t *testing.T) {
	s := NewStore("Чат 1")
	active := s.ActiveThreadID()

	s.Restore(State{})

	assert.Equal(t, active, s.ActiveThreadID())
	assert.Len(t, s.Threads(), 1)
}

func TestRestoreUnresolvableActiveFallsToFirst(t *testing.T) {
	s := NewStore("Чат 1")

	s.Restore(State{
		ActiveThreadID: "битый-указатель",
		Threads: []Thread{
			{ID: "a", Name: "Первый"},
			{ID: "b", Name: "Второй"},
		},
	})

	assert.Equal(t, "a", s.ActiveThreadID())
}

func TestRestoreContinuesAutoNaming(t *testing.T) {
	s := NewStore("Чат 1")
	s.Restore(State{
		ActiveThreadID: "a",
		Threads: []Thread{
			{ID: "a", Name: "Чат 1"},
			{ID: "b", Name: "Чат 2"},
			{ID: "c", Name: "Чат 3"},
		},
	})

	created := s.CreateThread("")
	assert.Equal(t, "Чат 4", created.Name)
}
