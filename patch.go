// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tramp

import (
	"encoding/binary"

	"gate.computer/tramp/internal/atomic"
	"gate.computer/tramp/internal/isa/arm64"
	"gate.computer/tramp/internal/isa/arm64/in"
	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const PLTEntryName = "plt_entry"

// PatchCallsite points the BL instruction at callAddr to target.  The
// instruction word is replaced atomically.
func (g *Generator) PatchCallsite(callAddr, target uint64) {
	if callAddr&3 != 0 || target&3 != 0 {
		pan.Panic(errors.Errorf("misaligned call patch: %#x -> %#x", callAddr, target))
	}

	b := g.view(callAddr, 4)

	old := atomic.LoadUint32(b)
	if _, err := in.DecodeBL(old); err != nil {
		pan.Panic(errors.Wrapf(err, "call site %#x", callAddr))
	}

	atomic.StoreUint32(b, arm64.CallInsn(callAddr, target))
	g.flusher.FlushICache(callAddr, 4)

	if ce := g.log.Check(zap.DebugLevel, "call site patched"); ce != nil {
		ce.Write(
			zap.Uint64("site", callAddr),
			zap.Uint64("target", target),
		)
	}
}

// CallTarget of the call instruction preceding a return address.
func (g *Generator) CallTarget(retAddr uint64) uint64 {
	callAddr := retAddr - 4
	return pan.Must(arm64.CallTarget(atomic.LoadUint32(g.view(callAddr, 4)), callAddr))
}

// PatchIndirectSlot stores target in the data slot read by the indirect
// stub at stubAddr.  The slot must already hold a non-zero address.
func (g *Generator) PatchIndirectSlot(stubAddr, target uint64) {
	slotAddr := pan.Must(arm64.DecodePLTEntry(g.view(stubAddr, arm64.PLTEntrySize), stubAddr))

	slot := g.view(slotAddr, 8)
	if atomic.LoadUint64(slot) == 0 {
		pan.Panic(errors.Errorf("indirect stub %#x refers to empty slot %#x", stubAddr, slotAddr))
	}

	atomic.StoreUint64(slot, target)

	if ce := g.log.Check(zap.DebugLevel, "indirect slot patched"); ce != nil {
		ce.Write(
			zap.Uint64("stub", stubAddr),
			zap.Uint64("slot", slotAddr),
			zap.Uint64("target", target),
		)
	}
}

// EmitPLTEntry creates an indirect stub which branches through the data
// slot at slotAddr.  info is stored after the branch.
func (g *Generator) EmitPLTEntry(slotAddr uint64, info uint32) *Trampoline {
	if slotAddr&7 != 0 {
		pan.Panic(errors.Errorf("misaligned indirect slot %#x", slotAddr))
	}

	a := g.reserve(g.global, arm64.PLTEntrySize)
	a.EmitPLTEntry(slotAddr&^0xfff, uint32(slotAddr&0xfff), info)

	return g.finish(PLTEntryName, a)
}

// PLTInfoOffset returns the info word of the indirect stub at stubAddr.
func (g *Generator) PLTInfoOffset(stubAddr uint64) uint32 {
	return binary.LittleEndian.Uint32(g.view(stubAddr+arm64.PLTInfoOffsetIndex*4, 4))
}
