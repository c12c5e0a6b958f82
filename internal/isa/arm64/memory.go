// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm64

import (
	"gate.computer/tramp/internal/gen/reg"
	"gate.computer/tramp/internal/isa/arm64/in"
	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
)

// Load a 64-bit word.  Offsets which don't fit in the scaled immediate field
// are materialized in IP0.
func (a *Asm) Load(rt, rn reg.R, offset int64) {
	a.access(in.LDR, in.LDRr, rt, rn, offset, in.I64)
}

// Store a 64-bit word.  Offsets which don't fit in the scaled immediate field
// are materialized in IP0.
func (a *Asm) Store(rt, rn reg.R, offset int64) {
	a.access(in.STR, in.STRr, rt, rn, offset, in.I64)
}

func (a *Asm) LoadFloat(rt, rn reg.R, offset int64) {
	a.access(in.LDR, in.LDRr, rt, rn, offset, in.F64)
}

func (a *Asm) StoreFloat(rt, rn reg.R, offset int64) {
	a.access(in.STR, in.STRr, rt, rn, offset, in.F64)
}

func (a *Asm) access(op in.RegRegImm12Size, opr in.RegRegSOptionRegSize, rt, rn reg.R, offset int64, t in.Type) {
	if in.FitsUint12Scaled(offset, t) {
		a.Insn(op.RtRnI12(rt, rn, in.Uint12Scaled(uint64(offset), t), t))
		return
	}

	if rn == RegIP0 || (t == in.I64 && rt == RegIP0 && op == in.STR) {
		pan.Panic(errors.Errorf("arm64: IP0 is needed for offset %d", offset))
	}

	var o outbuf

	o.moveImm64(RegIP0, uint64(offset))
	o.insn(opr.RtRnSOptionRm(rt, rn, in.Unscaled, in.UXTX, RegIP0, t))
	o.copy(&a.Text)
}

// StoreRegArray stores registers in a register-indexed array: register n goes
// to base+offset+n*8.  Adjacent registers are stored in pairs.
func (a *Asm) StoreRegArray(regs reg.Mask, base reg.R, offset int32) {
	a.regArray(in.STP, regs, base, offset, a.Store)
}

// LoadRegArray is the inverse of StoreRegArray.
func (a *Asm) LoadRegArray(regs reg.Mask, base reg.R, offset int32) {
	if regs.Has(base) {
		pan.Panic(errors.Errorf("arm64: register array load would clobber base %s", base))
	}
	a.regArray(in.LDP, regs, base, offset, a.Load)
}

func (a *Asm) regArray(pair in.RegRegRegImm7, regs reg.Mask, base reg.R, offset int32, single func(rt, rn reg.R, offset int64)) {
	if regs.Has(RegSP) {
		pan.Panic(errors.New("arm64: SP cannot be accessed through a register array"))
	}

	for r := reg.R(0); r < 31; r++ {
		if !regs.Has(r) {
			continue
		}

		addr := offset + int32(r)*8

		if r < 30 && regs.Has(r+1) && pairOffset(addr) {
			a.Insn(pair.RtRt2RnI7(r, r+1, base, in.Int7Scaled8(addr)))
			r++
		} else {
			single(r, base, int64(addr))
		}
	}
}

// StoreRegSet stores registers in ascending order into consecutive words.  SP
// is stored through IP1.
func (a *Asm) StoreRegSet(regs reg.Mask, base reg.R, offset int32) {
	pos := int32(0)

	for r := reg.R(0); r < 32; r++ {
		if !regs.Has(r) {
			continue
		}

		addr := offset + pos*8

		switch {
		case r < 30 && regs.Has(r+1) && pairOffset(addr):
			a.Insn(in.STP.RtRt2RnI7(r, r+1, base, in.Int7Scaled8(addr)))
			r++
			pos += 2

		case r == RegSP:
			a.MovSP(RegIP1, RegSP)
			a.Store(RegIP1, base, int64(addr))
			pos++

		default:
			a.Store(r, base, int64(addr))
			pos++
		}
	}
}

// StoreFloatArgs stores D0-D7 into consecutive words.
func (a *Asm) StoreFloatArgs(base reg.R, offset int32) {
	for i := reg.R(0); i < NumFloatArgs; i++ {
		a.StoreFloat(i, base, int64(offset)+int64(i)*8)
	}
}

// LoadFloatArgs is the inverse of StoreFloatArgs.
func (a *Asm) LoadFloatArgs(base reg.R, offset int32) {
	for i := reg.R(0); i < NumFloatArgs; i++ {
		a.LoadFloat(i, base, int64(offset)+int64(i)*8)
	}
}

func pairOffset(addr int32) bool {
	return addr&7 == 0 && addr >= -512 && addr <= 504
}
