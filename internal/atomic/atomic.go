// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package atomic loads and stores instruction and data words in live memory.
// Words are accessed in native byte order.
package atomic

import (
	"sync/atomic"
	"unsafe"

	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
)

func pointer(b []byte, size int) unsafe.Pointer {
	if len(b) < size {
		pan.Panic(errors.Errorf("atomic: %d-byte access to %d-byte view", size, len(b)))
	}
	p := unsafe.Pointer(&b[0])
	if uintptr(p)&uintptr(size-1) != 0 {
		pan.Panic(errors.Errorf("atomic: misaligned %d-byte access", size))
	}
	return p
}

func StoreUint32(b []byte, x uint32) {
	atomic.StoreUint32((*uint32)(pointer(b, 4)), x)
}

func StoreUint64(b []byte, x uint64) {
	atomic.StoreUint64((*uint64)(pointer(b, 8)), x)
}

func LoadUint32(b []byte) uint32 {
	return atomic.LoadUint32((*uint32)(pointer(b, 4)))
}

func LoadUint64(b []byte) uint64 {
	return atomic.LoadUint64((*uint64)(pointer(b, 8)))
}
