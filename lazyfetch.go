// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !tramp_nojit

package tramp

import (
	"gate.computer/tramp/internal/gen/link"
	"gate.computer/tramp/internal/isa/arm64"
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/reloc"
	"gate.computer/tramp/rgctx"
	"gate.computer/tramp/symbol"
	"github.com/pkg/errors"
)

const GeneralLazyFetchSize = 32

// LazyFetchSize is the code reservation of a lazy fetch trampoline.
func LazyFetchSize(depth int) int {
	return 64 + 16*depth
}

// CreateLazyFetch trampoline for a generic context slot.  The vtable or the
// method context is passed in X0, and the slot value is returned in X0.
//
// The fast path walks the context arrays without a frame.  A null pointer at
// any level branches to a specific trampoline of the lazy fetch kind, which
// sees the original caller and X0.
func (g *Generator) CreateLazyFetch(slot rgctx.Slot, aot bool) *Trampoline {
	loc := rgctx.Locate(slot, g.abi)

	a := g.reserve(g.global, LazyFetchSize(loc.Depth))

	var slowPath link.L

	if loc.Method {
		a.Mov(arm64.RegIP1, arm64.RegVTable)
	} else {
		a.Load(arm64.RegIP1, arm64.RegVTable, int64(g.abi.VTableContextOffset))
		slowPath.AddSite(a.BranchIfZeroStub(arm64.RegIP1))
	}

	for i := 0; i < loc.Depth; i++ {
		var offset int64
		if loc.Method && i == 0 {
			offset = int64(g.abi.MethodContextHeaderSize)
		}

		a.Load(arm64.RegIP1, arm64.RegIP1, offset)
		slowPath.AddSite(a.BranchIfZeroStub(arm64.RegIP1))
	}

	a.Load(arm64.RegIP1, arm64.RegIP1, loc.Offset())
	slowPath.AddSite(a.BranchIfZeroStub(arm64.RegIP1))

	a.Mov(arm64.RegResult, arm64.RegIP1)
	a.Return()

	a.Label(&slowPath)

	var t reloc.Target
	if aot {
		t = reloc.Sym(symbol.SpecificLazyFetch(slot))
	} else {
		t = reloc.Imm(g.CreateSpecific(uint64(slot), kind.RGCTXLazyFetch).Addr)
	}
	a.BranchTarget(t)

	return g.finish(symbol.LazyFetch(slot), a)
}

// CreateGeneralLazyFetch trampoline always takes the slow path: it branches
// to the address found in the second word of the generic context register.
// Only ahead-of-time code uses it.
func (g *Generator) CreateGeneralLazyFetch(aot bool) *Trampoline {
	if !aot {
		pan.Panic(errors.New("general lazy fetch trampoline is only for ahead-of-time code"))
	}

	a := g.reserve(g.global, GeneralLazyFetchSize)
	a.Load(arm64.RegIP0, arm64.RegRGCTX, 8)
	a.Branch(arm64.RegIP0)

	return g.finish(symbol.GeneralLazyFetch, a)
}
