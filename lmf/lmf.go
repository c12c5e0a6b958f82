// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lmf defines the frame-chain record which generic trampolines link
// into a thread's chain while a runtime handler runs.  Stack walkers use the
// chain to step over trampoline frames.
package lmf

import (
	"encoding/binary"

	"gate.computer/tramp/abi"
	"gate.computer/tramp/internal/gen/reg"
	"github.com/pkg/errors"
)

// Record layout.
const (
	OffsetPrevious = 0
	OffsetSlotAddr = OffsetPrevious + abi.Word
	OffsetPC       = OffsetSlotAddr + abi.Word
	OffsetRegs     = OffsetPC + abi.Word
	NumRegs        = 12
	Size           = OffsetRegs + NumRegs*abi.Word
)

// Regs are saved in ascending order: X19-X28, FP, SP.
var Regs = reg.Range(19, 28) | reg.Set(29, 31)

// Indexes of FP and SP in the register array.
const (
	RegFP = 10
	RegSP = 11
)

// MaxDepth bounds chain walks.
const MaxDepth = 1 << 16

type Memory interface {
	View(addr uint64, size int) []byte
}

// Record mirrors a linked record.
type Record struct {
	Addr     uint64
	Previous uint64
	SlotAddr uint64
	PC       uint64 // Zero if the trampoline doesn't return to its caller.
	Regs     [NumRegs]uint64
}

func (r *Record) FP() uint64 { return r.Regs[RegFP] }
func (r *Record) SP() uint64 { return r.Regs[RegSP] }

// Read a record.
func Read(mem Memory, addr uint64) (r Record, err error) {
	b := mem.View(addr, Size)
	if len(b) < Size {
		err = errors.Errorf("frame-chain record at %#x is not mapped", addr)
		return
	}

	r.Addr = addr
	r.Previous = binary.LittleEndian.Uint64(b[OffsetPrevious:])
	r.SlotAddr = binary.LittleEndian.Uint64(b[OffsetSlotAddr:])
	r.PC = binary.LittleEndian.Uint64(b[OffsetPC:])
	for i := range r.Regs {
		r.Regs[i] = binary.LittleEndian.Uint64(b[OffsetRegs+i*abi.Word:])
	}
	return
}

// Head of the chain whose current-record pointer is stored at slotAddr.
func Head(mem Memory, slotAddr uint64) (uint64, error) {
	b := mem.View(slotAddr, abi.Word)
	if len(b) < abi.Word {
		return 0, errors.Errorf("frame-chain slot %#x is not mapped", slotAddr)
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Walk a chain from its head, newest record first.
func Walk(mem Memory, slotAddr uint64) (records []Record, err error) {
	addr, err := Head(mem, slotAddr)
	if err != nil {
		return
	}

	for addr != 0 {
		if len(records) == MaxDepth {
			err = errors.Errorf("frame chain at slot %#x is too deep or cyclic", slotAddr)
			return
		}

		var r Record
		if r, err = Read(mem, addr); err != nil {
			return
		}
		if r.SlotAddr != slotAddr {
			err = errors.Errorf("frame-chain record at %#x belongs to slot %#x, not %#x", addr, r.SlotAddr, slotAddr)
			return
		}

		records = append(records, r)
		addr = r.Previous
	}

	return
}
