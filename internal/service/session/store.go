package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrLastThread — попытка удалить единственный оставшийся диалог.
	ErrLastThread = errors.New("session: cannot delete the last remaining thread")
	// ErrNoThread — диалог с таким id не существует.
	ErrNoThread = errors.New("session: thread not found")
)

// Store владеет набором диалогов и указателем на активный. Единственный
// мутируемый ресурс движка: все изменения — добавление в конец или замена
// целиком, под мьютексом; наружу отдаются копии, частичных состояний не видно.
type Store struct {
	mu       sync.Mutex
	threads  []*Thread // в порядке создания
	activeID string
	created  int // счётчик для автоимён
}

// NewStore создаёт хранилище со стартовым диалогом: сессия всегда держит ≥1 диалог.
func NewStore(initialName string) *Store {
	s := &Store{}
	t := s.newThread(initialName)
	s.threads = append(s.threads, t)
	s.activeID = t.ID
	return s
}

func (s *Store) newThread(name string) *Thread {
	s.created++
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Чат %d", s.created)
	}
	return &Thread{ID: uuid.NewString(), Name: name, CreatedAt: time.Now(), Messages: []Message{}}
}

// CreateThread создаёт новый пустой диалог. Он становится адресуемым,
// но не активным.
func (s *Store) CreateThread(name string) Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.newThread(name)
	s.threads = append(s.threads, t)
	return copyThread(t)
}

// SelectThread переводит активный указатель; неизвестный id игнорируется.
func (s *Store) SelectThread(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(id) == nil {
		return false
	}
	s.activeID = id
	return true
}

// DeleteThread удаляет диалог. Последний оставшийся удалить нельзя.
// Если удалён активный — активным становится последний созданный из оставшихся.
func (s *Store) DeleteThread(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.threads) <= 1 {
		return ErrLastThread
	}
	idx := -1
	for i, t := range s.threads {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNoThread
	}
	s.threads = append(s.threads[:idx], s.threads[idx+1:]...)
	if s.activeID == id {
		s.activeID = s.threads[len(s.threads)-1].ID
	}
	return nil
}

// AppendMessages атомарно добавляет сообщения в конец диалога, сохраняя порядок.
func (s *Store) AppendMessages(threadID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(threadID)
	if t == nil {
		return ErrNoThread
	}
	t.Messages = append(t.Messages, msgs...)
	return nil
}

// ActiveThread возвращает копию активного диалога.
func (s *Store) ActiveThread() Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyThread(s.find(s.activeID))
}

// ActiveThreadID возвращает id активного диалога.
func (s *Store) ActiveThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Threads возвращает копии всех диалогов в порядке создания.
func (s *Store) Threads() []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		out = append(out, copyThread(t))
	}
	return out
}

// Snapshot возвращает сериализуемый снимок всего состояния.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{ActiveThreadID: s.activeID, Threads: make([]Thread, 0, len(s.threads))}
	for _, t := range s.threads {
		st.Threads = append(st.Threads, copyThread(t))
	}
	return st
}

// Restore замещает состояние восстановленным снимком. Восстановление
// защитное: снимок без диалогов игнорируется, а нерезолвящийся активный
// указатель (например, после частично повреждённого снимка) откатывается
// на первый диалог списка.
func (s *Store) Restore(st State) {
	if len(st.Threads) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	threads := make([]*Thread, 0, len(st.Threads))
	for i := range st.Threads {
		t := copyThread(&st.Threads[i])
		threads = append(threads, &t)
	}
	s.threads = threads
	if s.created < len(threads) {
		s.created = len(threads)
	}
	s.activeID = st.ActiveThreadID
	if s.find(s.activeID) == nil {
		s.activeID = s.threads[0].ID
	}
}

func (s *Store) find(id string) *Thread {
	for _, t := range s.threads {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func copyThread(t *Thread) Thread {
	if t == nil {
		return Thread{}
	}
	out := *t
	out.Messages = make([]Message, len(t.Messages))
	copy(out.Messages, t.Messages)
	return out
}
