// Copyright (c) 2024 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm64

import (
	"gate.computer/tramp/internal/gen/reg"
	"gate.computer/tramp/internal/isa/arm64/in"
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/lmf"
	"github.com/pkg/errors"
)

// MaxStackStep is the largest stack adjustment made by one instruction
// during frame setup.
const MaxStackStep = 256

// AllocFrame allocates size bytes of stack, saves FP and LR at the bottom and
// points FP to the new frame.
func (a *Asm) AllocFrame(size int32) {
	if size < 16 || size&15 != 0 {
		pan.Panic(errors.Errorf("arm64: invalid frame size %d", size))
	}

	for imm := size; ; imm -= MaxStackStep {
		if imm <= MaxStackStep {
			a.Insn(in.SUBi.RdRnI12S2(RegSP, RegSP, uint32(imm), 0, in.Size64))
			break
		}
		a.Insn(in.SUBi.RdRnI12S2(RegSP, RegSP, MaxStackStep, 0, in.Size64))
	}

	a.Insn(in.STP.RtRt2RnI7(RegFP, RegLink, RegSP, 0))
	a.MovSP(RegFP, RegSP)
}

// DestroyFrame restores FP and LR and releases the frame.  temp is clobbered
// if the size doesn't fit in an immediate.
func (a *Asm) DestroyFrame(size int32, temp reg.R) {
	a.Insn(in.LDP.RtRt2RnI7(RegFP, RegLink, RegSP, 0))

	if size <= 0xfff {
		a.AddImm(RegSP, RegSP, size)
	} else {
		checkNotSP(temp)
		a.MoveImm64(temp, uint64(size))
		a.Insn(in.ADDe.RdRnI3ExtRm(RegSP, RegSP, 0, in.UXTX, temp, in.Size64))
	}
}

// AddLarge adds a non-negative value in steps of at most MaxStackStep.  rd
// and rn may be SP.
func (a *Asm) AddLarge(rd, rn reg.R, imm int32) {
	if imm < 0 {
		pan.Panic(errors.Errorf("arm64: negative addend %d", imm))
	}

	src := rn
	for {
		step := imm
		if step > MaxStackStep {
			step = MaxStackStep
		}
		a.AddImm(rd, src, step)
		src = rd
		imm -= step
		if imm == 0 {
			return
		}
	}
}

// CallerFrame stores the caller's FP, SP and return address into a record.
// The caller's SP is computed from the frame size.  A zero return address is
// stored if pc is RegZero.  IP1 is clobbered.
func (a *Asm) CallerFrame(base reg.R, fpOffset, spOffset, pcOffset int64, frameSize int32, pc reg.R) {
	a.Load(RegIP1, RegFP, 0)
	a.Store(RegIP1, base, fpOffset)

	a.AddLarge(RegIP1, RegFP, frameSize)
	a.Store(RegIP1, base, spOffset)

	if pc == RegZero {
		a.Store(RegZero, base, pcOffset)
	} else {
		a.Load(pc, RegFP, 8)
		a.Store(pc, base, pcOffset)
	}
}

// LinkFrameChain pushes the frame-chain record at FP+offset.  X0 holds the
// address of the thread's chain slot.  IP0 and IP1 are clobbered.
func (a *Asm) LinkFrameChain(offset int32) {
	a.AddImm(RegIP0, RegFP, offset)
	a.Store(RegResult, RegIP0, lmf.OffsetSlotAddr)
	a.Load(RegIP1, RegResult, 0)
	a.Store(RegIP1, RegIP0, lmf.OffsetPrevious)
	a.Store(RegIP0, RegResult, 0)
}

// UnlinkFrameChain restores the chain slot to the previous record.  IP0 and
// IP1 are clobbered.
func (a *Asm) UnlinkFrameChain(offset int32) {
	a.AddImm(RegIP0, RegFP, offset)
	a.Load(RegIP1, RegIP0, lmf.OffsetPrevious)
	a.Load(RegIP0, RegIP0, lmf.OffsetSlotAddr)
	a.Store(RegIP1, RegIP0, 0)
}
