// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package code

import (
	"encoding/binary"
)

type Buffer interface {
	Bytes() []byte
	Extend(n int) []byte
	PutUint32(uint32) // Little-endian byte order.
}

// Buf is an optimized Buffer.  The cached length (Addr) avoids interface
// function calls.  Base is the absolute address of the first byte.
type Buf struct {
	Buffer
	Addr int32
	Base uint64
}

func (buf *Buf) Extend(n int) (b []byte) {
	b = buf.Buffer.Extend(n)
	buf.Addr += int32(n)
	return
}

func (buf *Buf) PutUint32(x uint32) {
	buf.Buffer.PutUint32(x)
	buf.Addr += 4
}

// AbsAddr of the current position.
func (buf *Buf) AbsAddr() uint64 {
	return buf.Base + uint64(buf.Addr)
}

// Uint32 reads back an already written instruction.
func (buf *Buf) Uint32(addr int32) uint32 {
	return binary.LittleEndian.Uint32(buf.Bytes()[addr:])
}

// PutUint32At overwrites an already written instruction.
func (buf *Buf) PutUint32At(addr int32, x uint32) {
	binary.LittleEndian.PutUint32(buf.Bytes()[addr:], x)
}
