// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rgctx describes generic context slots.
//
// A generic context is a chain of pointer arrays.  Word 0 of each array links
// to the next (larger) array; the remaining words are slots.  Class-level
// contexts are reached through a vtable, method-level contexts are passed
// directly and start with a fixed header.
package rgctx

import (
	"fmt"

	"gate.computer/tramp/abi"
)

// Slot is an encoded slot reference.
type Slot uint32

const MethodBit = 0x80000000

func NewSlot(method bool, index uint32) Slot {
	s := Slot(index &^ MethodBit)
	if method {
		s |= MethodBit
	}
	return s
}

func (s Slot) IsMethod() bool { return s&MethodBit != 0 }
func (s Slot) Index() uint32  { return uint32(s &^ MethodBit) }

func (s Slot) String() string {
	if s.IsMethod() {
		return fmt.Sprintf("mrgctx_%d", s.Index())
	}
	return fmt.Sprintf("rgctx_%d", s.Index())
}

// ArraySize in words at a depth of the chain.
func ArraySize(depth int, method bool) uint32 {
	if method {
		return 6 << uint(depth)
	}
	return 4 << uint(depth)
}

// Location of a slot within the chain.
type Location struct {
	Method bool
	Depth  int    // Number of links to follow.
	Index  uint32 // Word index within the array at Depth, excluding the link.
}

// Offset of the slot in the array at Depth.
func (l Location) Offset() int64 {
	return int64(l.Index+1) * abi.Word
}

// Locate a slot.  For method-level slots the index is relative to the start
// of the context including its header.
func Locate(s Slot, a abi.ABI) (l Location) {
	l.Method = s.IsMethod()
	index := s.Index()
	if l.Method {
		index += a.MethodContextHeaderSize / abi.Word
	}

	for {
		size := ArraySize(l.Depth, l.Method)
		if index < size-1 {
			break
		}
		index -= size - 1
		l.Depth++
	}

	l.Index = index
	return
}
