// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regctx defines the register context record shared by trampolines
// and the runtime handlers they call.
package regctx

import (
	"encoding/binary"

	"gate.computer/tramp/abi"
)

// Record layout.
const (
	OffsetRegs  = 0
	OffsetFRegs = OffsetRegs + abi.NumRegs*abi.Word
	OffsetPC    = OffsetFRegs + abi.NumFloatArgs*abi.Word
	Size        = OffsetPC + abi.Word
)

// Register numbers with special meaning in a context.
const (
	RegFP = 29
	RegLR = 30
	RegSP = 31 // Holds the stack pointer, not the zero register.
)

// RegOffset of a general-purpose register slot.
func RegOffset(r int) int32 {
	return OffsetRegs + int32(r)*abi.Word
}

// FRegOffset of a floating-point register slot.
func FRegOffset(r int) int32 {
	return OffsetFRegs + int32(r)*abi.Word
}

// Context mirrors the record.
type Context struct {
	Regs  [abi.NumRegs]uint64
	FRegs [abi.NumFloatArgs]uint64
	PC    uint64
}

// Decode a record.  b must hold at least Size bytes.
func (c *Context) Decode(b []byte) {
	_ = b[Size-1]

	for i := range c.Regs {
		c.Regs[i] = binary.LittleEndian.Uint64(b[RegOffset(i):])
	}
	for i := range c.FRegs {
		c.FRegs[i] = binary.LittleEndian.Uint64(b[FRegOffset(i):])
	}
	c.PC = binary.LittleEndian.Uint64(b[OffsetPC:])
}

// Encode a record.  b must hold at least Size bytes.
func (c *Context) Encode(b []byte) {
	_ = b[Size-1]

	for i, x := range c.Regs {
		binary.LittleEndian.PutUint64(b[RegOffset(i):], x)
	}
	for i, x := range c.FRegs {
		binary.LittleEndian.PutUint64(b[FRegOffset(i):], x)
	}
	binary.LittleEndian.PutUint64(b[OffsetPC:], c.PC)
}
