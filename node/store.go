// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"sync"

	"github.com/luxfi/drp/object"
)

// Store holds the Objects a Node currently hosts, keyed by object id.
// Writes happen when the Node registers or unregisters an object; readers
// obtain the *object.Object itself and call its own synchronized methods.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*object.Object
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{objects: make(map[string]*object.Object)}
}

// Put registers obj, keyed by its own id.
func (s *Store) Put(obj *object.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[obj.ID()] = obj
}

// Get returns the object registered under id, if any.
func (s *Store) Get(id string) (*object.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[id]
	return o, ok
}

// Delete removes id from the store.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
}

// IDs returns every currently-registered object id.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	return ids
}
