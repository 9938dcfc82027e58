package client

import "sync"

// TokenStore keeps the admin session token between requests, the way a
// browser keeps it in local storage.
type TokenStore interface {
	Get() string
	Set(token string)
	Clear()
}

type memoryTokenStore struct {
	mutex sync.RWMutex
	token string
}

func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{}
}

func (s *memoryTokenStore) Get() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.token
}

func (s *memoryTokenStore) Set(token string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = token
}

func (s *memoryTokenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = ""
}
