// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !tramp_nojit

package tramp

import (
	"gate.computer/tramp/internal/isa/arm64"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/symbol"
)

// Code reservations.
const (
	SpecificSize      = 64
	UnboxSize         = 32
	StaticContextSize = 40 // Two 64-bit constants and a branch.
)

// CreateSpecific trampoline which passes arg to the generic trampoline of a
// kind in IP1.  IP0 is clobbered.
func (g *Generator) CreateSpecific(arg uint64, k kind.Kind) *Trampoline {
	generic := g.generic(k)

	a := g.reserve(g.global, SpecificSize)
	a.MoveImm64(arm64.RegIP1, arg)
	a.MoveImm64(arm64.RegIP0, generic)
	a.Branch(arm64.RegIP0)

	return g.finish(symbol.Specific(k), a)
}

// CreateUnbox trampoline which adjusts a boxed receiver in X0 to point to
// its value, and branches to target.
func (g *Generator) CreateUnbox(target uint64) *Trampoline {
	a := g.reserve(g.domain, UnboxSize)
	a.MoveImm64(arm64.RegIP0, target)
	a.AddImm(arm64.RegVTable, arm64.RegVTable, int32(g.abi.ObjectHeaderSize))
	a.Branch(arm64.RegIP0)

	return g.finish(symbol.Unbox, a)
}

// CreateStaticContext trampoline which loads a generic context and branches
// to target.
func (g *Generator) CreateStaticContext(ctx, target uint64) *Trampoline {
	a := g.reserve(g.domain, StaticContextSize)
	a.MoveImm64(arm64.RegRGCTX, ctx)
	a.MoveImm64(arm64.RegIP0, target)
	a.Branch(arm64.RegIP0)

	return g.finish(symbol.StaticContext, a)
}
