// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lmf

import (
	"encoding/binary"
	"testing"
)

type flatMemory struct {
	base uint64
	data []byte
}

func (m *flatMemory) View(addr uint64, size int) []byte {
	if addr < m.base || addr+uint64(size) > m.base+uint64(len(m.data)) {
		return nil
	}
	return m.data[addr-m.base : addr-m.base+uint64(size)]
}

func (m *flatMemory) put(addr, value uint64) {
	binary.LittleEndian.PutUint64(m.View(addr, 8), value)
}

func TestLayout(t *testing.T) {
	if OffsetPC != 16 || OffsetRegs != 24 || Size != 120 {
		t.Error(OffsetPC, OffsetRegs, Size)
	}
	if Regs.Len() != NumRegs {
		t.Error(Regs)
	}
}

func TestWalk(t *testing.T) {
	const slot = 0x1000

	mem := &flatMemory{base: slot, data: make([]byte, 0x1000)}

	if records, err := Walk(mem, slot); err != nil || len(records) != 0 {
		t.Fatal(records, err)
	}

	outer := uint64(slot + 0x100)
	inner := uint64(slot + 0x200)

	mem.put(outer+OffsetSlotAddr, slot)
	mem.put(outer+OffsetPC, 0xabc)
	mem.put(inner+OffsetPrevious, outer)
	mem.put(inner+OffsetSlotAddr, slot)
	mem.put(inner+OffsetRegs+RegSP*8, 0x8000)
	mem.put(slot, inner)

	records, err := Walk(mem, slot)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatal(records)
	}
	if records[0].Addr != inner || records[0].SP() != 0x8000 {
		t.Error(records[0])
	}
	if records[1].Addr != outer || records[1].PC != 0xabc {
		t.Error(records[1])
	}

	mem.put(outer+OffsetPrevious, inner)
	if _, err := Walk(mem, slot); err == nil {
		t.Error("cyclic chain accepted")
	}
}
