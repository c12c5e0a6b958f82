// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reloc describes the symbolic references of relocatable trampolines,
// and resolves them the way a loader would.
package reloc

import (
	"encoding/binary"
	"fmt"

	"gate.computer/tramp/internal/isa/arm64/in"
	"github.com/pkg/errors"
)

type Kind int

const (
	// GOTLoad is an ADRP, ADD, LDR sequence which loads a 64-bit value from a
	// global offset table slot into a register.
	GOTLoad Kind = iota
)

func (k Kind) String() string {
	switch k {
	case GOTLoad:
		return "got_load"

	default:
		return fmt.Sprintf("relocation kind %d", int(k))
	}
}

// Size of the code sequence covered by a relocation.
func (k Kind) Size() int {
	return 12
}

// Record of a symbolic reference.
type Record struct {
	Offset int32 // Code offset of the first instruction.
	Kind   Kind
	Symbol string
}

func (r Record) String() string {
	return fmt.Sprintf("%#x %s %s", r.Offset, r.Kind, r.Symbol)
}

// Target is either an absolute address or a symbol.
type Target struct {
	addr   uint64
	symbol string
}

func Imm(addr uint64) Target    { return Target{addr: addr} }
func Sym(name string) Target    { return Target{symbol: name} }
func (t Target) IsSymbol() bool { return t.symbol != "" }
func (t Target) Addr() uint64   { return t.addr }
func (t Target) Symbol() string { return t.symbol }

func (t Target) String() string {
	if t.IsSymbol() {
		return t.symbol
	}
	return fmt.Sprintf("%#x", t.addr)
}

// Apply a GOTLoad relocation: point the instruction sequence at the slot.
// codeAddr is the address of code[0] when executed.
func Apply(code []byte, codeAddr uint64, r Record, slotAddr uint64) error {
	if r.Kind != GOTLoad {
		return errors.Errorf("unsupported relocation: %s", r)
	}
	if r.Offset < 0 || int(r.Offset)+r.Kind.Size() > len(code) {
		return errors.Errorf("relocation is outside of code: %s", r)
	}
	if slotAddr&7 != 0 {
		return errors.Errorf("misaligned slot %#x for %s", slotAddr, r.Symbol)
	}

	b := code[r.Offset:]

	rd, _, err := in.DecodeADRP(binary.LittleEndian.Uint32(b[0:]))
	if err != nil {
		return errors.Wrap(err, r.String())
	}
	if ad, an, _, err := in.DecodeADDi(binary.LittleEndian.Uint32(b[4:])); err != nil || ad != rd || an != rd {
		return errors.Errorf("%s: unexpected ADD encoding", r)
	}
	if lt, ln, _, err := in.DecodeLDR(binary.LittleEndian.Uint32(b[8:])); err != nil || lt != rd || ln != rd {
		return errors.Errorf("%s: unexpected LDR encoding", r)
	}

	pages, ok := in.PageDisplacement(codeAddr+uint64(r.Offset), slotAddr)
	if !ok {
		return errors.Errorf("%s: slot %#x is out of ADRP range", r, slotAddr)
	}

	hi, lo := in.Int21(pages)
	binary.LittleEndian.PutUint32(b[0:], in.ADRP.RdI19hiI2lo(rd, hi, lo))
	binary.LittleEndian.PutUint32(b[4:], in.ADDi.RdRnI12S2(rd, rd, uint32(slotAddr&0xfff), 0, in.Size64))
	binary.LittleEndian.PutUint32(b[8:], in.LDR.RtRnI12(rd, rd, 0, in.I64))
	return nil
}

// ApplyAll relocations, looking up slot addresses by symbol.
func ApplyAll(code []byte, codeAddr uint64, records []Record, slot func(symbol string) (uint64, error)) error {
	for _, r := range records {
		addr, err := slot(r.Symbol)
		if err != nil {
			return errors.Wrapf(err, "resolving %s", r.Symbol)
		}
		if err := Apply(code, codeAddr, r, addr); err != nil {
			return err
		}
	}
	return nil
}
