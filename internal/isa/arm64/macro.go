// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arm64 emits the instruction sequences which trampolines are built
// from.
package arm64

import (
	"gate.computer/tramp/internal/code"
	"gate.computer/tramp/internal/gen/link"
	"gate.computer/tramp/internal/gen/reg"
	"gate.computer/tramp/internal/isa/arm64/in"
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/reloc"
	"github.com/pkg/errors"
)

const (
	NopWord = in.NOP
	PadWord = 0xd4200000 // BRK #0 instruction
)

// Asm appends instructions to a code buffer.  Symbolic address loads are
// recorded in Relocs.
type Asm struct {
	Text   code.Buf
	Relocs []reloc.Record
}

func (a *Asm) Insn(i uint32) {
	a.Text.PutUint32(i)
}

// MoveImm64 loads a 64-bit constant using one to four instructions.
func (a *Asm) MoveImm64(rd reg.R, value uint64) {
	var o outbuf

	o.moveImm64(rd, value)
	o.copy(&a.Text)
}

// LoadTarget loads an absolute address into rd.  A symbolic target is loaded
// from its global offset table slot through a relocated ADRP, ADD, LDR
// sequence.
func (a *Asm) LoadTarget(rd reg.R, t reloc.Target) {
	if !t.IsSymbol() {
		a.MoveImm64(rd, t.Addr())
		return
	}

	a.Relocs = append(a.Relocs, reloc.Record{
		Offset: a.Text.Addr,
		Kind:   reloc.GOTLoad,
		Symbol: t.Symbol(),
	})

	var o outbuf

	o.insn(in.ADRP.RdI19hiI2lo(rd, 0, 0))
	o.insn(in.ADDi.RdRnI12S2(rd, rd, 0, 0, in.Size64))
	o.insn(in.LDR.RtRnI12(rd, rd, 0, in.I64))
	o.copy(&a.Text)
}

// Mov between general-purpose registers other than SP.
func (a *Asm) Mov(rd, rm reg.R) {
	a.Insn(in.ORRs.RdRnI6RmS2(rd, RegZero, 0, rm, in.LSL, in.Size64))
}

// MovSP is a move where either register may be SP.
func (a *Asm) MovSP(rd, rn reg.R) {
	a.Insn(in.ADDi.RdRnI12S2(rd, rn, 0, 0, in.Size64))
}

// AddImm with 12-bit immediate.  Registers may be SP.
func (a *Asm) AddImm(rd, rn reg.R, imm int32) {
	a.Insn(in.ADDi.RdRnI12S2(rd, rn, in.Uint12(uint64(imm)), 0, in.Size64))
}

// Call the address in r.
func (a *Asm) Call(r reg.R) {
	a.Insn(in.BLR.Rn(r))
}

// Branch to the address in r.
func (a *Asm) Branch(r reg.R) {
	a.Insn(in.BR.Rn(r))
}

func (a *Asm) Return() {
	a.Insn(in.RET.Rn(RegLink))
}

// CallTarget loads a target into IP0 and calls it.
func (a *Asm) CallTarget(t reloc.Target) {
	a.LoadTarget(RegIP0, t)
	a.Call(RegIP0)
}

// BranchTarget loads a target into IP0 and branches to it.
func (a *Asm) BranchTarget(t reloc.Target) {
	a.LoadTarget(RegIP0, t)
	a.Branch(RegIP0)
}

// BranchIfZeroStub emits a CBZ whose target is resolved by UpdateBranches.
// The returned site is the offset following the instruction.
func (a *Asm) BranchIfZeroStub(r reg.R) int32 {
	a.Insn(in.CBZ.RtI19(r, 0, in.Size64))
	return a.Text.Addr
}

// BranchIfNonZeroStub is like BranchIfZeroStub.
func (a *Asm) BranchIfNonZeroStub(r reg.R) int32 {
	a.Insn(in.CBNZ.RtI19(r, 0, in.Size64))
	return a.Text.Addr
}

// Label the current position, and point the label's branches to it.
func (a *Asm) Label(l *link.L) {
	l.Addr = a.Text.Addr
	UpdateBranches(a.Text.Bytes(), l)
}

func (a *Asm) PadUntil(addr int32) {
	for a.Text.Addr < addr {
		a.Insn(PadWord)
	}
}

func checkNotSP(r reg.R) {
	if r == RegSP {
		pan.Panic(errors.New("arm64: register 31 is the zero register in this instruction"))
	}
}
