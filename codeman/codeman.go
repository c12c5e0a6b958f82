// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codeman reserves executable memory for generated code.
package codeman

import (
	"sync"

	"github.com/pkg/errors"
)

// Alignment of reserved regions.
const Alignment = 16

// Region of writable and executable memory.
type Region struct {
	Addr  uint64
	Bytes []byte
}

// Reserver hands out regions.  Implementations must be safe for concurrent
// use.
type Reserver interface {
	Reserve(size int) (Region, error)
}

// Flusher invalidates the instruction cache.
type Flusher interface {
	FlushICache(addr uint64, size int)
}

// Memory provides raw byte views of mapped memory by address.  A nil or short
// result means that the range is not mapped.
type Memory interface {
	View(addr uint64, size int) []byte
}

// NopFlusher is sufficient on hosts with coherent caches, and for simulation.
type NopFlusher struct{}

func (NopFlusher) FlushICache(uint64, int) {}

// Arena is a bump allocator over memory which is mapped at a known address.
type Arena struct {
	mu   sync.Mutex
	base uint64
	mem  []byte
	used int
}

// NewArena over mem, which is mapped at base.
func NewArena(base uint64, mem []byte) *Arena {
	return &Arena{base: base, mem: mem}
}

func (a *Arena) Reserve(size int) (r Region, err error) {
	if size <= 0 {
		err = errors.Errorf("invalid code reservation size: %d", size)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	offset := (a.used + Alignment - 1) &^ (Alignment - 1)
	if offset+size > len(a.mem) {
		err = errors.Errorf("out of code memory: need %d bytes, have %d", size, len(a.mem)-offset)
		return
	}
	a.used = offset + size

	r = Region{
		Addr:  a.base + uint64(offset),
		Bytes: a.mem[offset : offset+size : offset+size],
	}
	return
}

func (a *Arena) View(addr uint64, size int) []byte {
	if addr < a.base || size < 0 {
		return nil
	}
	offset := addr - a.base
	if offset+uint64(size) > uint64(len(a.mem)) {
		return nil
	}
	return a.mem[offset : offset+uint64(size)]
}

// Contains reports if addr is inside the arena.
func (a *Arena) Contains(addr uint64) bool {
	return addr >= a.base && addr-a.base < uint64(len(a.mem))
}

func (a *Arena) Base() uint64 { return a.base }
func (a *Arena) Cap() int     { return len(a.mem) }

func (a *Arena) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}
