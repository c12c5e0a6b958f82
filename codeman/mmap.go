// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux || darwin

package codeman

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultSize of a Manager mapping.
const DefaultSize = 4 * 1024 * 1024

// Manager reserves regions from an anonymous read-write-execute mapping.
type Manager struct {
	*Arena
	mapping []byte
}

func NewManager(size int) (m *Manager, err error) {
	if size <= 0 {
		size = DefaultSize
	}

	mapping, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		err = errors.Wrap(err, "code memory mapping")
		return
	}

	m = &Manager{
		Arena:   NewArena(uint64(uintptr(unsafe.Pointer(&mapping[0]))), mapping),
		mapping: mapping,
	}
	return
}

func (m *Manager) Close() (err error) {
	if m.mapping != nil {
		err = unix.Munmap(m.mapping)
		m.mapping = nil
		m.Arena = NewArena(0, nil)
	}
	return
}
