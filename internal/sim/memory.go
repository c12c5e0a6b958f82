// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Fault is returned when unmapped memory is accessed.
type Fault struct {
	Addr uint64
	PC   uint64
}

func (f *Fault) Error() string {
	return fmt.Sprintf("memory fault at %#x (pc %#x)", f.Addr, f.PC)
}

type segment struct {
	base uint64
	data []byte
}

// Memory is a sparse address space.  Mapping is safe for concurrent use with
// other mapping and viewing; the returned byte slices are not synchronized.
type Memory struct {
	mu   sync.RWMutex
	segs []segment
}

// Map zeroed memory at base.  Overlapping mappings panic.
func (m *Memory) Map(base uint64, size int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.segs {
		if base < s.base+uint64(len(s.data)) && s.base < base+uint64(size) {
			panic(errors.Errorf("sim: mapping %#x+%d overlaps %#x+%d", base, size, s.base, len(s.data)))
		}
	}

	data := make([]byte, size)
	m.segs = append(m.segs, segment{base, data})
	sort.Slice(m.segs, func(i, j int) bool { return m.segs[i].base < m.segs[j].base })
	return data
}

// View of mapped memory, or nil.
func (m *Memory) View(addr uint64, size int) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := sort.Search(len(m.segs), func(i int) bool { return m.segs[i].base > addr }) - 1
	if i < 0 || size < 0 {
		return nil
	}
	s := m.segs[i]
	offset := addr - s.base
	if offset+uint64(size) > uint64(len(s.data)) {
		return nil
	}
	return s.data[offset : offset+uint64(size)]
}

func (m *Memory) Uint64(addr uint64) (uint64, bool) {
	b := m.View(addr, 8)
	if b == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func (m *Memory) PutUint64(addr, value uint64) bool {
	b := m.View(addr, 8)
	if b == nil {
		return false
	}
	binary.LittleEndian.PutUint64(b, value)
	return true
}

func (m *Memory) Uint32(addr uint64) (uint32, bool) {
	b := m.View(addr, 4)
	if b == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}
