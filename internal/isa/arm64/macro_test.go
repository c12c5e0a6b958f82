// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm64

import (
	"encoding/binary"
	"testing"

	"gate.computer/tramp/buffer"
	"gate.computer/tramp/internal/code"
	"gate.computer/tramp/internal/gen/link"
	"gate.computer/tramp/internal/gen/reg"
	"gate.computer/tramp/internal/isa/arm64/in"
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/reloc"
	"github.com/google/go-cmp/cmp"
)

func newAsm(size int, base uint64) *Asm {
	return &Asm{Text: code.Buf{Buffer: buffer.NewStatic(make([]byte, size)), Base: base}}
}

func words(a *Asm) (ws []uint32) {
	b := a.Text.Bytes()
	for i := 0; i < len(b); i += 4 {
		ws = append(ws, binary.LittleEndian.Uint32(b[i:]))
	}
	return
}

func catch(f func()) (err error) {
	defer func() {
		err = pan.Error(recover())
	}()

	f()
	return
}

func TestMoveImm64(t *testing.T) {
	for _, x := range []struct {
		value uint64
		count int
	}{
		{0, 1},
		{0xffff, 1},
		{0x10000, 2},
		{0xdead0000beef, 2},
		{0x1234000000000000, 2},
		{0x123456789abcdef0, 4},
		{0xffffffffffffffff, 4},
	} {
		a := newAsm(16, 0)
		a.MoveImm64(RegIP0, x.value)

		ws := words(a)
		if len(ws) != x.count {
			t.Errorf("%#x: %d instructions", x.value, len(ws))
		}
		if ws[0] != in.MOVZ.RdI16Hw(RegIP0, uint32(x.value&0xffff), 0, in.Size64) {
			t.Errorf("%#x: %#08x", x.value, ws[0])
		}
	}
}

func TestAllocFrame(t *testing.T) {
	a := newAsm(64, 0)
	a.AllocFrame(480)

	expect := []uint32{
		in.SUBi.RdRnI12S2(RegSP, RegSP, 256, 0, in.Size64),
		in.SUBi.RdRnI12S2(RegSP, RegSP, 224, 0, in.Size64),
		0xa9007bfd, // stp x29, x30, [sp]
		0x910003fd, // mov x29, sp
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}

	if err := catch(func() { a.AllocFrame(24) }); err == nil {
		t.Error("misaligned frame accepted")
	}
}

func TestDestroyFrame(t *testing.T) {
	a := newAsm(64, 0)
	a.DestroyFrame(352, RegIP0)

	expect := []uint32{
		0xa9407bfd, // ldp x29, x30, [sp]
		in.ADDi.RdRnI12S2(RegSP, RegSP, 352, 0, in.Size64),
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}

	a = newAsm(64, 0)
	a.DestroyFrame(0x10000, RegIP0)

	expect = []uint32{
		0xa9407bfd,
		in.MOVZ.RdI16Hw(RegIP0, 0, 0, in.Size64),
		in.MOVK.RdI16Hw(RegIP0, 1, 1, in.Size64),
		0x8b3063ff, // add sp, sp, x16
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}
}

func TestAddLarge(t *testing.T) {
	a := newAsm(64, 0)
	a.AddLarge(RegIP1, RegFP, 600)

	expect := []uint32{
		in.ADDi.RdRnI12S2(RegIP1, RegFP, 256, 0, in.Size64),
		in.ADDi.RdRnI12S2(RegIP1, RegIP1, 256, 0, in.Size64),
		in.ADDi.RdRnI12S2(RegIP1, RegIP1, 88, 0, in.Size64),
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}
}

func TestRegArray(t *testing.T) {
	a := newAsm(256, 0)
	a.StoreRegArray(reg.Set(0, 1, 2, 30), RegFP, 16)

	expect := []uint32{
		in.STP.RtRt2RnI7(0, 1, RegFP, in.Int7Scaled8(16)),
		in.STR.RtRnI12(2, RegFP, in.Uint12Scaled(32, in.I64), in.I64),
		in.STR.RtRnI12(30, RegFP, in.Uint12Scaled(256, in.I64), in.I64),
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}

	// Pairs beyond the signed 7-bit range are split.
	a = newAsm(256, 0)
	a.LoadRegArray(reg.Set(27, 28), RegIP1, 304)

	expect = []uint32{
		in.LDR.RtRnI12(27, RegIP1, in.Uint12Scaled(520, in.I64), in.I64),
		in.LDR.RtRnI12(28, RegIP1, in.Uint12Scaled(528, in.I64), in.I64),
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}

	// Unaligned offsets are materialized in IP0.
	a = newAsm(256, 0)
	a.LoadRegArray(reg.Set(27, 28), RegIP1, 300)

	expect = []uint32{
		in.MOVZ.RdI16Hw(RegIP0, 516, 0, in.Size64),
		in.LDRr.RtRnSOptionRm(27, RegIP1, in.Unscaled, in.UXTX, RegIP0, in.I64),
		in.MOVZ.RdI16Hw(RegIP0, 524, 0, in.Size64),
		in.LDRr.RtRnSOptionRm(28, RegIP1, in.Unscaled, in.UXTX, RegIP0, in.I64),
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}

	if err := catch(func() { newAsm(64, 0).LoadRegArray(reg.Set(29), RegFP, 0) }); err == nil {
		t.Error("base register load accepted")
	}
	if err := catch(func() { newAsm(64, 0).StoreRegArray(reg.Set(31), RegFP, 0) }); err == nil {
		t.Error("SP in register array accepted")
	}
}

func TestStoreRegSet(t *testing.T) {
	a := newAsm(256, 0)
	a.StoreRegSet(reg.Range(19, 22)|reg.Set(RegFP, RegSP), RegIP0, 24)

	expect := []uint32{
		in.STP.RtRt2RnI7(19, 20, RegIP0, in.Int7Scaled8(24)),
		in.STP.RtRt2RnI7(21, 22, RegIP0, in.Int7Scaled8(40)),
		in.STR.RtRnI12(RegFP, RegIP0, in.Uint12Scaled(56, in.I64), in.I64),
		in.ADDi.RdRnI12S2(RegIP1, RegSP, 0, 0, in.Size64),
		in.STR.RtRnI12(RegIP1, RegIP0, in.Uint12Scaled(64, in.I64), in.I64),
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}
}

func TestLoadFallback(t *testing.T) {
	a := newAsm(64, 0)
	a.Load(RegIP1, RegIP1, 0x8000)

	expect := []uint32{
		in.MOVZ.RdI16Hw(RegIP0, 0x8000, 0, in.Size64),
		0xf8706a31, // ldr x17, [x17, x16]
	}
	if diff := cmp.Diff(expect, words(a)); diff != "" {
		t.Error(diff)
	}

	if err := catch(func() { newAsm(64, 0).Load(RegIP1, RegIP0, 12) }); err == nil {
		t.Error("clobbered base accepted")
	}
}

func TestLoadTarget(t *testing.T) {
	a := newAsm(64, 0)
	a.Insn(NopWord)
	a.LoadTarget(RegIP0, reloc.Sym("get_lmf_addr"))
	a.LoadTarget(RegIP1, reloc.Imm(0x1234))

	if diff := cmp.Diff([]reloc.Record{{Offset: 4, Kind: reloc.GOTLoad, Symbol: "get_lmf_addr"}}, a.Relocs); diff != "" {
		t.Error(diff)
	}

	ws := words(a)
	if len(ws) != 5 {
		t.Fatal(len(ws))
	}
	if _, _, err := in.DecodeADRP(ws[1]); err != nil {
		t.Error(err)
	}
	if _, _, _, err := in.DecodeLDR(ws[3]); err != nil {
		t.Error(err)
	}
}

func TestUpdateBranches(t *testing.T) {
	a := newAsm(64, 0)
	var l link.L

	l.AddSite(a.BranchIfZeroStub(RegIP1))
	a.Insn(NopWord)
	l.AddSite(a.BranchIfNonZeroStub(RegResult))
	a.Insn(NopWord)
	a.Label(&l)

	ws := words(a)
	if ws[0] != in.CBZ.RtI19(RegIP1, 4, in.Size64) {
		t.Errorf("%#08x", ws[0])
	}
	if ws[2] != in.CBNZ.RtI19(RegResult, 2, in.Size64) {
		t.Errorf("%#08x", ws[2])
	}

	text := a.Text.Bytes()
	if err := catch(func() { updateBranchInsn(text, 8, 0) }); err == nil {
		t.Error("NOP updated as branch")
	}
}

func TestCallInsn(t *testing.T) {
	const callAddr = 0x40000000

	for _, target := range []uint64{
		callAddr,
		callAddr + 4,
		callAddr - 4,
		callAddr + MaxCallDistance - 4,
		callAddr - MaxCallDistance,
	} {
		target2, err := CallTarget(CallInsn(callAddr, target), callAddr)
		if err != nil {
			t.Fatal(err)
		}
		if target2 != target {
			t.Errorf("%#x decoded as %#x", target, target2)
		}
	}

	for _, target := range []uint64{
		callAddr + MaxCallDistance,
		callAddr - MaxCallDistance - 4,
		callAddr + 2,
	} {
		if err := catch(func() { CallInsn(callAddr, target) }); err == nil {
			t.Errorf("%#x accepted", target)
		}
	}

	if _, err := CallTarget(NopWord, callAddr); err == nil {
		t.Error("NOP decoded as call")
	}
}

func TestPLTEntry(t *testing.T) {
	for _, x := range []struct {
		entry  uint64
		got    uint64
		offset uint32
	}{
		{0x400000, 0x400000, 0},
		{0x400ff0, 0x500ab8, 0x40},
		{0x7f0000300000, 0x7f0000100008, 0x7ff8}, // Negative page displacement.
	} {
		a := newAsm(PLTEntrySize, x.entry)
		a.EmitPLTEntry(x.got, x.offset, 0xfeed)

		slot, err := DecodePLTEntry(a.Text.Bytes(), x.entry)
		if err != nil {
			t.Fatal(err)
		}
		if slot != x.got+uint64(x.offset) {
			t.Errorf("%#x: slot %#x", x.entry, slot)
		}
		if info := PLTInfo(a.Text.Bytes()); info != 0xfeed {
			t.Errorf("info %#x", info)
		}
	}

	bad := make([]byte, PLTEntrySize)
	if _, err := DecodePLTEntry(bad, 0x1000); err == nil {
		t.Error("zero words decoded as PLT entry")
	}
}
