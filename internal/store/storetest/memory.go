// Package storetest provides an in-memory store repository for handler tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"shopkit/internal/store"
)

type Memory struct {
	mu     sync.Mutex
	nextID int64
	byKey  map[string]*store.Store

	// Err, when set, is returned by every call.
	Err error
}

func NewMemory(stores ...store.Store) *Memory {
	m := &Memory{byKey: map[string]*store.Store{}}
	for _, s := range stores {
		s := s
		if s.ID == 0 {
			m.nextID++
			s.ID = m.nextID
		} else if s.ID > m.nextID {
			m.nextID = s.ID
		}
		m.byKey[s.Key] = &s
	}
	return m
}

func (m *Memory) FindByKey(_ context.Context, key string) (*store.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.byKey[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) FindByID(_ context.Context, id int64) (*store.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, s := range m.byKey {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) Upsert(_ context.Context, key, domain, token, scopes string) (*store.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	now := time.Now()
	s, ok := m.byKey[key]
	if !ok {
		m.nextID++
		s = &store.Store{ID: m.nextID, Key: key, CreatedAt: now}
		m.byKey[key] = s
	}
	s.Domain, s.Token, s.Scopes, s.UpdatedAt = domain, token, scopes, now
	cp := *s
	return &cp, nil
}

func (m *Memory) SaveExtra(_ context.Context, s *store.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cur, ok := m.byKey[s.Key]
	if !ok {
		return store.ErrNotFound
	}
	cur.Extra = s.Extra
	return nil
}
