// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import (
	"gate.computer/tramp/internal/gen/reg"
	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
)

// Size of a data-processing operation (the sf bit).
type Size uint32

const (
	Size32 = Size(0 << 31)
	Size64 = Size(1 << 31)
)

// Type of a load/store register (size and V bits).
type Type uint32

const (
	I64 = Type(3<<30 | 0<<26)
	F64 = Type(3<<30 | 1<<26)
)

// Scale returns the access size in bytes.
func (t Type) Scale() uint64 {
	return 1 << (uint32(t) >> 30)
}

func immError(kind string, value int64) {
	pan.Panic(errors.Errorf("arm64: immediate value %d does not fit in %s field", value, kind))
}

// Uint12 validates an unsigned 12-bit immediate.
func Uint12(i uint64) uint32 {
	if i > 0xfff {
		immError("uint12", int64(i))
	}
	return uint32(i)
}

// Uint12Scaled validates a byte offset for an unsigned-offset load or store.
func Uint12Scaled(offset uint64, t Type) uint32 {
	scale := t.Scale()
	if offset%scale != 0 {
		pan.Panic(errors.Errorf("arm64: offset %d is not aligned to %d bytes", offset, scale))
	}
	return Uint12(offset / scale)
}

// FitsUint12Scaled reports if offset can be encoded as an unsigned scaled
// load/store offset.
func FitsUint12Scaled(offset int64, t Type) bool {
	scale := int64(t.Scale())
	return offset >= 0 && offset%scale == 0 && offset/scale <= 0xfff
}

// Uint16 validates a move-wide immediate.
func Uint16(i uint64) uint32 {
	if i > 0xffff {
		immError("uint16", int64(i))
	}
	return uint32(i)
}

// Int7Scaled8 validates a byte offset of a 64-bit register pair access.
func Int7Scaled8(offset int32) uint32 {
	if offset&7 != 0 || offset < -512 || offset > 504 {
		immError("scaled int7", int64(offset))
	}
	return uint32(offset/8) & 0x7f
}

// Int19 validates a signed 19-bit word displacement.
func Int19(i int32) uint32 {
	if i < -(1<<18) || i >= 1<<18 {
		immError("int19", int64(i))
	}
	return uint32(i) & 0x7ffff
}

// Int26 validates a signed 26-bit word displacement.
func Int26(i int32) uint32 {
	if i < -(1<<25) || i >= 1<<25 {
		immError("int26", int64(i))
	}
	return uint32(i) & 0x3ffffff
}

// FitsInt26 reports if a byte displacement can be reached by B or BL.
func FitsInt26(offset int64) bool {
	return offset&3 == 0 && offset >= -(1<<27) && offset < 1<<27
}

// Int21 validates a signed 21-bit ADR/ADRP immediate and splits it.
func Int21(i int64) (hi, lo uint32) {
	if i < -(1<<20) || i >= 1<<20 {
		immError("int21", i)
	}
	u := uint32(i) & 0x1fffff
	return u >> 2, u & 3
}

type S uint32

const (
	Unscaled = S(0 << 12)
	Scaled   = S(1 << 12)
)

type Shift uint32

const (
	LSL = Shift(0 << 22)
	LSR = Shift(1 << 22)
	ASR = Shift(2 << 22)
)

type Ext uint32

const (
	UXTW = Ext(2 << 13)
	UXTX = Ext(3 << 13)
)

type (
	Imm16                uint32
	Imm26                uint32
	Reg                  uint32
	RegImm16HwSf         uint32
	RegImm19Imm2         uint32
	RegImm19Size         uint32
	RegRegImm3ExtRegSf   uint32
	RegRegImm6RegShiftSf uint32
	RegRegImm12ShiftSf   uint32
	RegRegImm12Size      uint32
	RegRegRegImm7        uint32
	RegRegSOptionRegSize uint32
)

func (op Imm16) I16(imm uint32) uint32 {
	return uint32(op) | imm<<5
}

func (op Imm26) I26(imm uint32) uint32 {
	return uint32(op) | imm
}

func (op Reg) Rn(rn reg.R) uint32 {
	return uint32(op) | uint32(rn)<<5
}

func (op RegImm16HwSf) RdI16Hw(rd reg.R, imm, hw uint32, t Size) uint32 {
	return uint32(op) | uint32(t) | hw<<21 | imm<<5 | uint32(rd)
}

func (op RegImm19Imm2) RdI19hiI2lo(r reg.R, hi, lo uint32) uint32 {
	return uint32(op) | lo<<29 | hi<<5 | uint32(r)
}

func (op RegImm19Size) RtI19(r reg.R, imm uint32, t Size) uint32 {
	return uint32(op) | uint32(t) | imm<<5 | uint32(r)
}

func (op RegRegImm3ExtRegSf) RdRnI3ExtRm(rd, rn reg.R, imm uint32, option Ext, rm reg.R, t Size) uint32 {
	return uint32(op) | uint32(t) | uint32(rm)<<16 | uint32(option) | imm<<10 | uint32(rn)<<5 | uint32(rd)
}

func (op RegRegImm6RegShiftSf) RdRnI6RmS2(rd, rn reg.R, imm uint32, rm reg.R, shift Shift, t Size) uint32 {
	return uint32(op) | uint32(t) | uint32(shift) | uint32(rm)<<16 | imm<<10 | uint32(rn)<<5 | uint32(rd)
}

func (op RegRegImm12ShiftSf) RdRnI12S2(rd, rn reg.R, imm, shift uint32, t Size) uint32 {
	return uint32(op) | uint32(t) | shift<<22 | imm<<10 | uint32(rn)<<5 | uint32(rd)
}

func (op RegRegImm12Size) RtRnI12(rt, rn reg.R, imm uint32, t Type) uint32 {
	return uint32(op) | uint32(t) | imm<<10 | uint32(rn)<<5 | uint32(rt)
}

func (op RegRegRegImm7) RtRt2RnI7(rt, rt2, rn reg.R, imm uint32) uint32 {
	return uint32(op) | imm<<15 | uint32(rt2)<<10 | uint32(rn)<<5 | uint32(rt)
}

func (op RegRegSOptionRegSize) RtRnSOptionRm(rt, rn reg.R, s S, option Ext, rm reg.R, t Type) uint32 {
	return uint32(op) | uint32(t)&(1<<30|1<<26) | uint32(rm)<<16 | uint32(option) | uint32(s) | uint32(rn)<<5 | uint32(rt)
}

// PageDisplacement returns the ADRP immediate which yields the 4 KiB page of
// target when executed at pc.
func PageDisplacement(pc, target uint64) (pages int64, ok bool) {
	pages = int64(target>>12) - int64(pc>>12)
	ok = pages >= -(1<<20) && pages < 1<<20
	return
}
