// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm64

import (
	"encoding/binary"

	"gate.computer/tramp/internal/gen/link"
	"gate.computer/tramp/internal/isa/arm64/in"
	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
	"golang.org/x/xerrors"
)

// MaxCallDistance is the reach of BL in either direction.
const MaxCallDistance = 128 * 1024 * 1024

// UpdateBranches points the label's compare-and-branch and unconditional
// branch instructions to its address.
func UpdateBranches(text []byte, l *link.L) {
	labelAddr := l.FinalAddr()
	for _, afterBranchAddr := range l.Sites {
		updateBranchInsn(text, afterBranchAddr, labelAddr)
	}
}

func updateBranchInsn(text []byte, addr, labelAddr int32) {
	branchAddr := addr - 4
	offset := (labelAddr - branchAddr) / 4

	insn := binary.LittleEndian.Uint32(text[branchAddr:])

	switch {
	case insn&0x7e000000 == 0x34000000: // Compare and branch.
		insn = insn&^(0x7ffff<<5) | in.Int19(offset)<<5

	case insn&in.MaskImm26 == uint32(in.B): // Unconditional branch.
		insn = insn&^0x3ffffff | in.Int26(offset)

	default:
		pan.Panic(errors.Errorf("arm64: unknown branch instruction encoding: %#08x", insn))
	}

	binary.LittleEndian.PutUint32(text[branchAddr:], insn)
}

// CallInsn encodes a BL instruction located at callAddr.
func CallInsn(callAddr, target uint64) uint32 {
	offset := int64(target - callAddr)
	if !in.FitsInt26(offset) {
		pan.Panic(errors.Errorf("arm64: call target %#x is out of range from %#x", target, callAddr))
	}
	return in.BL.I26(in.Int26(int32(offset / 4)))
}

// CallTarget decodes a BL instruction located at callAddr.
func CallTarget(insn uint32, callAddr uint64) (uint64, error) {
	offset, err := in.DecodeBL(insn)
	if err != nil {
		return 0, xerrors.Errorf("call site %#x: %w", callAddr, err)
	}
	return callAddr + uint64(offset), nil
}
