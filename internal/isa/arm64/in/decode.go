// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import (
	"gate.computer/tramp/internal/gen/reg"
	"golang.org/x/xerrors"
)

// ErrEncoding is wrapped by decoding errors.
var ErrEncoding = xerrors.New("unexpected instruction encoding")

func signExtend(x uint32, bits uint) int64 {
	shift := 64 - bits
	return int64(uint64(x)<<shift) >> shift
}

// DecodeBL returns the byte displacement of a BL instruction.
func DecodeBL(insn uint32) (offset int64, err error) {
	if insn&MaskImm26 != uint32(BL) {
		err = xerrors.Errorf("%#08x is not BL: %w", insn, ErrEncoding)
		return
	}
	offset = signExtend(insn&0x3ffffff, 26) * 4
	return
}

// DecodeADRP returns the destination register and the page displacement in
// bytes.
func DecodeADRP(insn uint32) (rd reg.R, offset int64, err error) {
	if insn&MaskImm19Imm2 != uint32(ADRP) {
		err = xerrors.Errorf("%#08x is not ADRP: %w", insn, ErrEncoding)
		return
	}
	imm := (insn>>5&0x7ffff)<<2 | insn>>29&3
	rd = reg.R(insn & 31)
	offset = signExtend(imm, 21) << 12
	return
}

// DecodeADDi decodes a 64-bit unshifted ADD (immediate) instruction.
func DecodeADDi(insn uint32) (rd, rn reg.R, imm uint32, err error) {
	if insn&(MaskImm12Shift|3<<22) != uint32(ADDi)|uint32(Size64) {
		err = xerrors.Errorf("%#08x is not unshifted 64-bit ADD: %w", insn, ErrEncoding)
		return
	}
	rd = reg.R(insn & 31)
	rn = reg.R(insn >> 5 & 31)
	imm = insn >> 10 & 0xfff
	return
}

// DecodeLDR decodes a 64-bit general-purpose LDR (unsigned offset)
// instruction.  The offset is in bytes.
func DecodeLDR(insn uint32) (rt, rn reg.R, offset uint32, err error) {
	if insn&MaskImm12Size != uint32(LDR)|uint32(I64) {
		err = xerrors.Errorf("%#08x is not 64-bit LDR: %w", insn, ErrEncoding)
		return
	}
	rt = reg.R(insn & 31)
	rn = reg.R(insn >> 5 & 31)
	offset = (insn >> 10 & 0xfff) * 8
	return
}

// DecodeBR returns the register operand of a BR instruction.
func DecodeBR(insn uint32) (rn reg.R, err error) {
	if insn&MaskReg != uint32(BR) {
		err = xerrors.Errorf("%#08x is not BR: %w", insn, ErrEncoding)
		return
	}
	rn = reg.R(insn >> 5 & 31)
	return
}
