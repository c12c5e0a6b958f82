// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

const (
	NOP = 0xd503201f

	// Compare & branch (immediate)
	CBZ  = RegImm19Size(0x1a<<25 | 0<<24)
	CBNZ = RegImm19Size(0x1a<<25 | 1<<24)

	// Exception generation
	BRK = Imm16(0xd4<<24 | 1<<21 | 0<<2 | 0<<0)

	// Unconditional branch (immediate)
	B  = Imm26(0<<31 | 5<<26)
	BL = Imm26(1<<31 | 5<<26)

	// Unconditional branch (register)
	BR  = Reg(0x6b<<25 | 0<<21 | 0x1f<<16 | 0<<10 | 0<<0)
	BLR = Reg(0x6b<<25 | 1<<21 | 0x1f<<16 | 0<<10 | 0<<0)
	RET = Reg(0x6b<<25 | 2<<21 | 0x1f<<16 | 0<<10 | 0<<0)

	// Load/store register (register offset)
	STRr = RegRegSOptionRegSize(1<<31 | 7<<27 | 0<<24 | 0<<22 | 1<<21 | 2<<10)
	LDRr = RegRegSOptionRegSize(1<<31 | 7<<27 | 0<<24 | 1<<22 | 1<<21 | 2<<10)

	// Load/store register (unsigned immediate)
	STR = RegRegImm12Size(1<<31 | 7<<27 | 1<<24 | 0<<22)
	LDR = RegRegImm12Size(1<<31 | 7<<27 | 1<<24 | 1<<22)

	// Load/store register pair (signed offset), 64-bit general-purpose
	STP = RegRegRegImm7(2<<30 | 5<<27 | 0<<26 | 2<<23 | 0<<22)
	LDP = RegRegRegImm7(2<<30 | 5<<27 | 0<<26 | 2<<23 | 1<<22)

	// Add/subtract (immediate)
	ADDi = RegRegImm12ShiftSf(0<<30 | 0<<29 | 0x11<<24)
	SUBi = RegRegImm12ShiftSf(1<<30 | 0<<29 | 0x11<<24)

	// Move wide (immediate)
	MOVN = RegImm16HwSf(0<<29 | 0x25<<23)
	MOVZ = RegImm16HwSf(2<<29 | 0x25<<23)
	MOVK = RegImm16HwSf(3<<29 | 0x25<<23)

	// Address generation
	ADR  = RegImm19Imm2(0<<31 | 0x10<<24)
	ADRP = RegImm19Imm2(1<<31 | 0x10<<24)

	// Add/subtract (extended register)
	ADDe = RegRegImm3ExtRegSf(0<<30 | 0<<29 | 0x0b<<24 | 0<<22 | 1<<21)

	// Logical (shifted register)
	ORRs = RegRegImm6RegShiftSf(1<<29 | 0x0a<<24 | 0<<21)
)

// Opcode masks for recognizing encoded instructions.
const (
	MaskImm26      = 0xfc000000
	MaskReg        = 0xfffffc1f
	MaskImm19Size  = 0xff000000
	MaskImm16Hw    = 0xff800000
	MaskImm19Imm2  = 0x9f000000
	MaskImm12Shift = 0xff800000 // Excluding shift bits.
	MaskImm12Size  = 0xffc00000
	MaskImm7Pair   = 0xffc00000
	MaskExtReg     = 0xffe00000
	MaskShiftReg   = 0xff200000
	MaskSOptionReg = 0xffe00c00
)
