// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry maps code addresses to trampoline information, for stack
// walkers and debuggers.
package registry

import (
	"sync"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

// Info about a code range.
type Info struct {
	Name   string
	Addr   uint64
	Size   int
	Relocs int
}

func (i *Info) Contains(pc uint64) bool {
	return pc >= i.Addr && pc-i.Addr < uint64(i.Size)
}

// Registry is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[*Info]
}

func New() *Registry {
	return &Registry{
		tree: btree.NewG[*Info](8, func(a, b *Info) bool {
			return a.Addr < b.Addr
		}),
	}
}

// Register a code range.  Ranges may not overlap.
func (r *Registry) Register(info Info) error {
	if info.Size <= 0 {
		return errors.Errorf("registering %s with size %d", info.Name, info.Size)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var prev *Info
	r.tree.DescendLessOrEqual(&Info{Addr: info.Addr + uint64(info.Size) - 1}, func(i *Info) bool {
		prev = i
		return false
	})
	if prev != nil && prev.Addr+uint64(prev.Size) > info.Addr {
		return errors.Errorf("%s at %#x overlaps %s at %#x", info.Name, info.Addr, prev.Name, prev.Addr)
	}

	r.tree.ReplaceOrInsert(&info)
	return nil
}

// Lookup the range containing pc.
func (r *Registry) Lookup(pc uint64) (info Info, found bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p := r.lookup(pc); p != nil {
		info = *p
		found = true
	}
	return
}

// lookup the last range starting at or before pc, if it ends after pc.
func (r *Registry) lookup(pc uint64) (found *Info) {
	r.tree.DescendLessOrEqual(&Info{Addr: pc}, func(i *Info) bool {
		if i.Contains(pc) {
			found = i
		}
		return false
	})
	return
}

// Each range in address order.
func (r *Registry) Each(f func(Info) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	r.tree.Ascend(func(i *Info) bool {
		return f(*i)
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree.Len()
}
