// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reloc

import (
	"encoding/binary"
	"testing"

	"gate.computer/tramp/internal/isa/arm64/in"
	"github.com/pkg/errors"
)

func placeholder() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], in.NOP)
	binary.LittleEndian.PutUint32(b[4:], in.ADRP.RdI19hiI2lo(16, 0, 0))
	binary.LittleEndian.PutUint32(b[8:], in.ADDi.RdRnI12S2(16, 16, 0, 0, in.Size64))
	binary.LittleEndian.PutUint32(b[12:], in.LDR.RtRnI12(16, 16, 0, in.I64))
	return b
}

// resolve the slot address the way the processor would.
func resolve(t *testing.T, code []byte, pc uint64) uint64 {
	t.Helper()

	_, pages, err := in.DecodeADRP(binary.LittleEndian.Uint32(code[0:]))
	if err != nil {
		t.Fatal(err)
	}
	_, _, lo, err := in.DecodeADDi(binary.LittleEndian.Uint32(code[4:]))
	if err != nil {
		t.Fatal(err)
	}
	_, _, offset, err := in.DecodeLDR(binary.LittleEndian.Uint32(code[8:]))
	if err != nil {
		t.Fatal(err)
	}

	return uint64(int64(pc&^0xfff)+pages) + uint64(lo) + uint64(offset)
}

func TestApply(t *testing.T) {
	const codeAddr = 0x7f0000123ff8

	for _, slot := range []uint64{
		0x7f0000124000,
		0x7f0000123ff0,
		0x7f0000000008,
		0x7f00fff00ab8,
		0x7eff80010010,
	} {
		code := placeholder()
		r := Record{Offset: 4, Kind: GOTLoad, Symbol: "get_lmf_addr"}

		if err := Apply(code, codeAddr, r, slot); err != nil {
			t.Fatal(err)
		}
		if addr := resolve(t, code[4:], codeAddr+4); addr != slot {
			t.Errorf("slot %#x resolved as %#x", slot, addr)
		}
	}
}

func TestApplyErrors(t *testing.T) {
	r := Record{Offset: 4, Kind: GOTLoad, Symbol: "x"}

	if err := Apply(placeholder(), 0x10000, r, 0x10000+1<<33); err == nil {
		t.Error("out-of-range slot accepted")
	}
	if err := Apply(placeholder(), 0x10000, r, 0x20004); err == nil {
		t.Error("misaligned slot accepted")
	}
	if err := Apply(placeholder(), 0x10000, Record{Offset: 0, Symbol: "x"}, 0x20000); err == nil {
		t.Error("NOP accepted as ADRP")
	}
	if err := Apply(placeholder(), 0x10000, Record{Offset: 8, Symbol: "x"}, 0x20000); err == nil {
		t.Error("truncated sequence accepted")
	}
}

func TestApplyAll(t *testing.T) {
	code := placeholder()
	records := []Record{{Offset: 4, Kind: GOTLoad, Symbol: "a"}}

	err := ApplyAll(code, 0x10000, records, func(symbol string) (uint64, error) {
		return 0, errors.New("no such symbol")
	})
	if err == nil {
		t.Error("unresolved symbol accepted")
	}

	err = ApplyAll(code, 0x10000, records, func(symbol string) (uint64, error) {
		return 0x30008, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if addr := resolve(t, code[4:], 0x10004); addr != 0x30008 {
		t.Errorf("%#x", addr)
	}
}

func TestTarget(t *testing.T) {
	if x := Imm(0x1234); x.IsSymbol() || x.Addr() != 0x1234 || x.String() != "0x1234" {
		t.Error(x)
	}
	if x := Sym("foo"); !x.IsSymbol() || x.Symbol() != "foo" {
		t.Error(x)
	}
}
