// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm64

import (
	"encoding/binary"

	"gate.computer/tramp/internal/isa/arm64/in"
	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
	"golang.org/x/xerrors"
)

// PLT entry: ADRP, ADD, LDR, BR through IP0, followed by an info word.
const (
	PLTEntrySize       = 5 * 4
	PLTInfoOffsetIndex = 4
)

// EmitPLTEntry loads the word at got+offset and branches to it.  got is the
// address of the global offset table (or of any page-relative base).
func (a *Asm) EmitPLTEntry(got uint64, offset, info uint32) {
	pages, ok := in.PageDisplacement(a.Text.AbsAddr(), got)
	if !ok {
		pan.Panic(errors.Errorf("arm64: table %#x is out of ADRP range from %#x", got, a.Text.AbsAddr()))
	}
	hi, lo := in.Int21(pages)

	var o outbuf

	o.insn(in.ADRP.RdI19hiI2lo(RegIP0, hi, lo))
	o.insn(in.ADDi.RdRnI12S2(RegIP0, RegIP0, uint32(got&0xfff), 0, in.Size64))
	o.insn(in.LDR.RtRnI12(RegIP0, RegIP0, in.Uint12Scaled(uint64(offset), in.I64), in.I64))
	o.insn(in.BR.Rn(RegIP0))
	o.insn(info)
	o.copy(&a.Text)
}

// DecodePLTEntry returns the address of the data slot read by an entry.
func DecodePLTEntry(entry []byte, entryAddr uint64) (slotAddr uint64, err error) {
	if len(entry) < PLTEntrySize {
		err = xerrors.Errorf("PLT entry at %#x is truncated: %w", entryAddr, in.ErrEncoding)
		return
	}

	rd, pages, err := in.DecodeADRP(binary.LittleEndian.Uint32(entry[0:]))
	if err != nil {
		return
	}

	ad, an, lo, err := in.DecodeADDi(binary.LittleEndian.Uint32(entry[4:]))
	if err != nil {
		return
	}
	if ad != rd || an != rd {
		err = xerrors.Errorf("PLT entry at %#x: ADD operands %s, %s: %w", entryAddr, ad, an, in.ErrEncoding)
		return
	}

	lt, ln, offset, err := in.DecodeLDR(binary.LittleEndian.Uint32(entry[8:]))
	if err != nil {
		return
	}
	if lt != rd || ln != rd {
		err = xerrors.Errorf("PLT entry at %#x: LDR operands %s, %s: %w", entryAddr, lt, ln, in.ErrEncoding)
		return
	}

	slotAddr = uint64(int64(entryAddr&^0xfff)+pages) + uint64(lo) + uint64(offset)
	return
}

// PLTInfo returns the info word of an entry.
func PLTInfo(entry []byte) uint32 {
	return binary.LittleEndian.Uint32(entry[PLTInfoOffsetIndex*4:])
}
