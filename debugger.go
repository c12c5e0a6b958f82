// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !tramp_nojit

package tramp

import (
	"gate.computer/tramp/abi"
	"gate.computer/tramp/internal/isa/arm64"
	"gate.computer/tramp/layout"
	"gate.computer/tramp/regctx"
	"gate.computer/tramp/symbol"
)

const DebugEventSize = 512

// DebugEventLayout of a debugger event trampoline's stack frame.
func DebugEventLayout(a abi.ABI) layout.Layout {
	return layout.Compute(layout.Sizes{
		layout.Context: regctx.Size,
	}, a.FrameAlignment)
}

// CreateDebugEvent trampoline which passes the interrupted register context
// to the single-step or breakpoint handler.  The handler may modify the
// context; execution resumes at its PC with its registers (except SP and
// the floating-point registers).
func (g *Generator) CreateDebugEvent(singleStep, aot bool) *Trampoline {
	l := DebugEventLayout(g.abi)
	ctx := l.Offset(layout.Context)

	handler := symbol.DebuggerBreakpoint
	name := symbol.Breakpoint
	if singleStep {
		handler = symbol.DebuggerSingleStep
		name = symbol.SingleStep
	}

	a := g.reserve(g.global, DebugEventSize)

	a.AllocFrame(l.Size)
	a.StoreRegArray(arm64.AllRegs, arm64.RegFP, ctx+regctx.OffsetRegs)
	a.CallerFrame(arm64.RegFP,
		int64(ctx+regctx.RegOffset(regctx.RegFP)),
		int64(ctx+regctx.RegOffset(regctx.RegSP)),
		int64(ctx+regctx.OffsetPC),
		l.Size, arm64.RegIP1)

	a.AddImm(arm64.RegResult, arm64.RegFP, ctx)
	a.CallTarget(g.target(handler, aot))

	// Resume through the frame block.
	a.Load(arm64.RegIP0, arm64.RegFP, int64(ctx+regctx.RegOffset(regctx.RegFP)))
	a.Store(arm64.RegIP0, arm64.RegFP, 0)
	a.Load(arm64.RegIP0, arm64.RegFP, int64(ctx+regctx.OffsetPC))
	a.Store(arm64.RegIP0, arm64.RegFP, 8)

	a.LoadRegArray(arm64.AllRegs, arm64.RegFP, ctx+regctx.OffsetRegs)
	a.DestroyFrame(l.Size, arm64.RegIP0)
	a.Return()

	return g.finish(name, a)
}
