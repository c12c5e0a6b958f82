// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim interprets the AArch64 instruction subset emitted by the
// trampoline generators.  Runtime routines are Go functions bound to
// addresses.
package sim

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrStepLimit is returned when a run doesn't reach a stop address.
var ErrStepLimit = errors.New("step limit exceeded")

// Undefined instruction error.
type Undefined struct {
	PC   uint64
	Insn uint32
}

func (u *Undefined) Error() string {
	return fmt.Sprintf("undefined instruction %#08x at %#x", u.Insn, u.PC)
}

// Native routine.  It is entered with the caller's return address in X30, and
// returns to it when the function returns.
type Native func(m *Machine)

type Machine struct {
	X  [31]uint64 // X30 is the link register.
	SP uint64
	D  [32]uint64
	PC uint64

	Mem   *Memory
	Steps int

	natives map[uint64]Native
	stops   map[uint64]bool
}

func NewMachine(mem *Memory) *Machine {
	return &Machine{
		Mem:     mem,
		natives: make(map[uint64]Native),
		stops:   make(map[uint64]bool),
	}
}

// Bind a native routine to an address.
func (m *Machine) Bind(addr uint64, f Native) {
	m.natives[addr] = f
}

// Stop execution when PC reaches addr.
func (m *Machine) Stop(addr uint64) {
	m.stops[addr] = true
}

// Run from the current PC until a stop address is reached.
func (m *Machine) Run(limit int) error {
	for n := 0; n < limit; n++ {
		if m.stops[m.PC] {
			return nil
		}

		if f := m.natives[m.PC]; f != nil {
			f(m)
			m.PC = m.X[30]
			continue
		}

		insn, ok := m.Mem.Uint32(m.PC)
		if !ok {
			return &Fault{m.PC, m.PC}
		}

		if err := m.step(insn); err != nil {
			return err
		}
		m.Steps++
	}

	return ErrStepLimit
}

// Call addr with LR pointing to a stop address.
func (m *Machine) Call(addr, ret uint64, limit int) error {
	m.Stop(ret)
	m.X[30] = ret
	m.PC = addr
	return m.Run(limit)
}

// ClobberCallerSaved overwrites registers which a callee may use freely,
// except X0.
func (m *Machine) ClobberCallerSaved(pattern uint64) {
	for i := 1; i <= 18; i++ {
		m.X[i] = pattern ^ uint64(i)
	}
	for i := range m.D {
		m.D[i] = ^pattern ^ uint64(i)
	}
}

// reg reads a register where 31 means the zero register.
func (m *Machine) reg(r uint32) uint64 {
	if r == 31 {
		return 0
	}
	return m.X[r]
}

func (m *Machine) setReg(r uint32, x uint64) {
	if r != 31 {
		m.X[r] = x
	}
}

// regSP reads a register where 31 means the stack pointer.
func (m *Machine) regSP(r uint32) uint64 {
	if r == 31 {
		return m.SP
	}
	return m.X[r]
}

func (m *Machine) setRegSP(r uint32, x uint64) {
	if r == 31 {
		m.SP = x
	} else {
		m.X[r] = x
	}
}

func (m *Machine) load(addr uint64) (uint64, error) {
	x, ok := m.Mem.Uint64(addr)
	if !ok {
		return 0, &Fault{addr, m.PC}
	}
	return x, nil
}

func (m *Machine) store(addr, x uint64) error {
	if !m.Mem.PutUint64(addr, x) {
		return &Fault{addr, m.PC}
	}
	return nil
}

func signExtend(x uint32, bits uint) int64 {
	shift := 64 - bits
	return int64(uint64(x)<<shift) >> shift
}

func (m *Machine) step(insn uint32) (err error) {
	rd := insn & 31
	rn := insn >> 5 & 31
	rt2 := insn >> 10 & 31
	rm := insn >> 16 & 31
	next := m.PC + 4

	switch {
	case insn == 0xd503201f: // NOP

	case insn&0xff800000 == 0xd2800000: // MOVZ
		hw := insn >> 21 & 3
		m.setReg(rd, uint64(insn>>5&0xffff)<<(hw*16))

	case insn&0xff800000 == 0xf2800000: // MOVK
		hw := insn >> 21 & 3
		shift := hw * 16
		m.setReg(rd, m.reg(rd)&^(0xffff<<shift)|uint64(insn>>5&0xffff)<<shift)

	case insn&0xff000000 == 0x91000000: // ADD (immediate)
		m.setRegSP(rd, m.regSP(rn)+immediate12(insn))

	case insn&0xff000000 == 0xd1000000: // SUB (immediate)
		m.setRegSP(rd, m.regSP(rn)-immediate12(insn))

	case insn&0xff200000 == 0xaa000000: // ORR (shifted register)
		if insn>>22&3 != 0 {
			return &Undefined{m.PC, insn}
		}
		m.setReg(rd, m.reg(rn)|m.reg(rm)<<(insn>>10&63))

	case insn&0xffe00000 == 0x8b200000: // ADD (extended register)
		if insn>>13&7 != 3 {
			return &Undefined{m.PC, insn}
		}
		m.setRegSP(rd, m.regSP(rn)+m.reg(rm)<<(insn>>10&7))

	case insn&0xffc00000 == 0xa9000000, insn&0xffc00000 == 0xa9400000: // STP, LDP
		addr := m.regSP(rn) + uint64(signExtend(insn>>15&0x7f, 7)*8)
		if insn&(1<<22) == 0 {
			if err = m.store(addr, m.reg(rd)); err == nil {
				err = m.store(addr+8, m.reg(rt2))
			}
		} else {
			var x1, x2 uint64
			if x1, err = m.load(addr); err == nil {
				if x2, err = m.load(addr + 8); err == nil {
					m.setReg(rd, x1)
					m.setReg(rt2, x2)
				}
			}
		}

	case insn&0xffc00000 == 0xf9000000: // STR (unsigned offset)
		err = m.store(m.regSP(rn)+uint64(insn>>10&0xfff)*8, m.reg(rd))

	case insn&0xffc00000 == 0xf9400000: // LDR (unsigned offset)
		var x uint64
		if x, err = m.load(m.regSP(rn) + uint64(insn>>10&0xfff)*8); err == nil {
			m.setReg(rd, x)
		}

	case insn&0xffc00000 == 0xfd000000: // STR (SIMD&FP, unsigned offset)
		err = m.store(m.regSP(rn)+uint64(insn>>10&0xfff)*8, m.D[rd])

	case insn&0xffc00000 == 0xfd400000: // LDR (SIMD&FP, unsigned offset)
		m.D[rd], err = m.load(m.regSP(rn) + uint64(insn>>10&0xfff)*8)

	case insn&0xbfe00c00 == 0xb8200800, insn&0xbfe00c00 == 0xb8600800: // STR, LDR (register)
		return m.accessRegOffset(insn, false)

	case insn&0xbfe00c00 == 0xbc200800, insn&0xbfe00c00 == 0xbc600800: // STR, LDR (SIMD&FP, register)
		return m.accessRegOffset(insn, true)

	case insn&0xfffffc1f == 0xd61f0000: // BR
		next = m.reg(rn)

	case insn&0xfffffc1f == 0xd63f0000: // BLR
		target := m.reg(rn)
		m.X[30] = next
		next = target

	case insn&0xfffffc1f == 0xd65f0000: // RET
		next = m.reg(rn)

	case insn&0xff000000 == 0xb4000000: // CBZ
		if m.reg(rd) == 0 {
			next = m.PC + uint64(signExtend(insn>>5&0x7ffff, 19)*4)
		}

	case insn&0xff000000 == 0xb5000000: // CBNZ
		if m.reg(rd) != 0 {
			next = m.PC + uint64(signExtend(insn>>5&0x7ffff, 19)*4)
		}

	case insn&0xfc000000 == 0x14000000: // B
		next = m.PC + uint64(signExtend(insn&0x3ffffff, 26)*4)

	case insn&0xfc000000 == 0x94000000: // BL
		m.X[30] = next
		next = m.PC + uint64(signExtend(insn&0x3ffffff, 26)*4)

	case insn&0x9f000000 == 0x90000000: // ADRP
		imm := (insn>>5&0x7ffff)<<2 | insn>>29&3
		m.setReg(rd, uint64(int64(m.PC&^0xfff)+signExtend(imm, 21)<<12))

	default:
		return &Undefined{m.PC, insn}
	}

	if err != nil {
		return
	}

	m.PC = next
	return
}

func immediate12(insn uint32) uint64 {
	imm := uint64(insn >> 10 & 0xfff)
	if insn&(1<<22) != 0 {
		imm <<= 12
	}
	return imm
}

func (m *Machine) accessRegOffset(insn uint32, float bool) (err error) {
	if insn>>30 != 3 || insn>>13&7 != 3 {
		return &Undefined{m.PC, insn}
	}

	rt := insn & 31
	offset := m.reg(insn >> 16 & 31)
	if insn&(1<<12) != 0 {
		offset <<= 3
	}
	addr := m.regSP(insn>>5&31) + offset
	load := insn&(1<<22) != 0

	switch {
	case load && float:
		m.D[rt], err = m.load(addr)

	case load:
		var x uint64
		if x, err = m.load(addr); err == nil {
			m.setReg(rt, x)
		}

	case float:
		err = m.store(addr, m.D[rt])

	default:
		err = m.store(addr, m.reg(rt))
	}

	if err == nil {
		m.PC += 4
	}
	return
}
