package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/checkout"

	"github.com/google/uuid"
)

// REDIS_ADDR 未設定時（ローカル開発・テスト）用
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, items: map[string]memoryEntry{}}
}

// Redisと同じくJSONで持つ（呼び出し側の変更が漏れないように）
func (s *MemoryStore) Save(ctx context.Context, st *checkout.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[st.ID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*checkout.State, error) {
	s.mu.Lock()
	e, ok := s.items[id]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.items, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}

	var st checkout.State
	if err := json.Unmarshal(e.data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

type MemoryLock struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	held map[string]heldLock
}

type heldLock struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLock(ttl time.Duration) *MemoryLock {
	return &MemoryLock{ttl: ttl, now: time.Now, held: map[string]heldLock{}}
}

func (l *MemoryLock) Acquire(ctx context.Context, id string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[id]; ok && l.now().Before(h.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[id] = heldLock{token: token, expiresAt: l.now().Add(l.ttl)}
	return token, true, nil
}

// 期限切れ後に別の人が取っていたら消さない
func (l *MemoryLock) Release(ctx context.Context, id, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[id]; ok && h.token == token {
		delete(l.held, id)
	}
	return nil
}
