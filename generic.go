// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !tramp_nojit

package tramp

import (
	"gate.computer/tramp/abi"
	"gate.computer/tramp/internal/gen/link"
	"gate.computer/tramp/internal/gen/reg"
	"gate.computer/tramp/internal/isa/arm64"
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/layout"
	"gate.computer/tramp/lmf"
	"gate.computer/tramp/regctx"
	"gate.computer/tramp/symbol"
	"github.com/pkg/errors"
)

// GenericSize is the code reservation of a generic trampoline.
const GenericSize = 768

// GenericLayout of a generic trampoline's stack frame.
func GenericLayout(a abi.ABI) layout.Layout {
	return layout.Compute(layout.Sizes{
		layout.RegContext: regctx.Size,
		layout.Arg:        abi.Word,
		layout.Result:     abi.Word,
		layout.FrameChain: lmf.Size,
	}, a.FrameAlignment)
}

// Registers restored before leaving a generic trampoline normally.
var genericRestoreRegs = arm64.ArgRegs | reg.Set(arm64.RegLink, arm64.RegRGCTX)

// CreateGeneric trampoline of a kind.  It is entered from a specific
// trampoline with the argument in IP1.
//
// The handler is called with a pointer to the register context, the caller's
// return address (zero for jump trampolines), the argument (X0 for kinds
// which have one), and zero.  Its result is returned in X0 or branched to,
// depending on the kind.
func (g *Generator) CreateGeneric(k kind.Kind, aot bool) *Trampoline {
	if !k.Valid() {
		pan.Panic(errors.Errorf("invalid trampoline kind: %d", int(k)))
	}

	l := GenericLayout(g.abi)
	var (
		gregs  = l.Offset(layout.RegContext)
		fregs  = gregs + regctx.OffsetFRegs
		arg    = int64(l.Offset(layout.Arg))
		result = int64(l.Offset(layout.Result))
		chain  = l.Offset(layout.FrameChain)
	)

	a := g.reserve(g.global, GenericSize)

	a.AllocFrame(l.Size)
	a.StoreRegArray(arm64.AllRegs, arm64.RegFP, gregs)
	a.StoreFloatArgs(arm64.RegFP, fregs)
	a.Store(arm64.RegIP1, arm64.RegFP, arg)

	callerPC := arm64.RegLink
	if k.Jump() {
		callerPC = arm64.RegZero
	}

	a.CallerFrame(arm64.RegFP,
		int64(gregs+regctx.RegOffset(regctx.RegFP)),
		int64(gregs+regctx.RegOffset(regctx.RegSP)),
		int64(gregs+regctx.OffsetPC),
		l.Size, callerPC)

	// Frame-chain record.

	a.AddImm(arm64.RegIP0, arm64.RegFP, chain)
	a.StoreRegSet(lmf.Regs, arm64.RegIP0, lmf.OffsetRegs)
	a.CallerFrame(arm64.RegIP0,
		lmf.OffsetRegs+lmf.RegFP*abi.Word,
		lmf.OffsetRegs+lmf.RegSP*abi.Word,
		lmf.OffsetPC,
		l.Size, callerPC)

	a.CallTarget(g.target(symbol.GetLMFAddr, aot))
	a.LinkFrameChain(chain)

	// Handler call.

	a.AddImm(arm64.RegResult, arm64.RegFP, gregs)

	if k.Jump() {
		a.Mov(arm64.RegArg1, arm64.RegZero)
	} else {
		a.Load(arm64.RegArg1, arm64.RegFP, int64(gregs)+int64(arm64.RegLink)*abi.Word)
	}

	if k.HasArg() {
		a.Load(arm64.RegArg2, arm64.RegFP, int64(gregs)+int64(arm64.RegVTable)*abi.Word)
	} else {
		a.Load(arm64.RegArg2, arm64.RegFP, arg)
	}

	a.Mov(arm64.RegArg3, arm64.RegZero)

	a.CallTarget(g.target(symbol.TrampolineFunc(k), aot))
	a.Store(arm64.RegResult, arm64.RegFP, result)

	a.UnlinkFrameChain(chain)

	a.CallTarget(g.target(symbol.InterruptionCheckpoint, aot))

	var exception link.L
	exception.AddSite(a.BranchIfNonZeroStub(arm64.RegResult))

	// Normal return.

	a.LoadRegArray(genericRestoreRegs, arm64.RegFP, gregs)
	a.LoadFloatArgs(arm64.RegFP, fregs)
	a.Load(arm64.RegIP1, arm64.RegFP, result)

	if k.ReturnsValue() {
		a.Mov(arm64.RegResult, arm64.RegIP1)
	}

	a.DestroyFrame(l.Size, arm64.RegIP0)

	if k.MustReturn() {
		a.Return()
	} else {
		a.Branch(arm64.RegIP1)
	}

	// Pending exception in X0.  The throw routine finds the throw site in
	// LR.

	a.Label(&exception)
	a.DestroyFrame(l.Size, arm64.RegIP0)
	a.LoadTarget(arm64.RegIP0, g.target(symbol.ThrowExceptionAddr, aot))
	a.Load(arm64.RegIP0, arm64.RegIP0, 0)
	a.Branch(arm64.RegIP0)

	return g.finish(symbol.Generic(k), a)
}
