// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tramp_test

import (
	"testing"

	"gate.computer/tramp"
	"gate.computer/tramp/codeman"
	"gate.computer/tramp/internal/sim"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/registry"
	"gate.computer/tramp/reloc"
	"gate.computer/tramp/symbol"
	"github.com/pkg/errors"
)

// Simulated address space.
const (
	globalAddr = 0x100000
	domainAddr = 0x200000
	codeSize   = 0x40000

	dataAddr       = 0x300000
	chainSlotAddr  = dataAddr
	throwVarAddr   = dataAddr + 8
	pendingVarAddr = dataAddr + 16
	gotAddr        = dataAddr + 0x1000
	dataSize       = 0x2000

	heapAddr = 0x400000
	heapSize = 0x10000

	stackAddr = 0x600000
	stackSize = 0x10000
	stackTop  = stackAddr + stackSize

	nativeAddr = 0xf00000
	exitAddr   = 0xe00000

	stepLimit = 10000
)

// Runtime routines.
const (
	getLMFAddr = nativeAddr + iota*0x10
	checkpoint
	throwException
	singleStepHandler
	breakpointHandler
	handlerBase // One per kind.
)

func handlerAddr(k kind.Kind) uint64 {
	return handlerBase + uint64(k)*0x10
}

type env struct {
	t        *testing.T
	mem      *sim.Memory
	m        *sim.Machine
	global   *codeman.Arena
	domain   *codeman.Arena
	registry *registry.Registry
	symbols  symbol.Table
	gen      *tramp.Generator
	aot      bool
	generics map[kind.Kind]uint64
	got      map[string]uint64

	heapUsed uint64
	pending  uint64 // Exception raised by the next checkpoint.
}

func newEnv(t *testing.T, aot bool) *env {
	t.Helper()

	mem := new(sim.Memory)
	e := &env{
		t:        t,
		mem:      mem,
		m:        sim.NewMachine(mem),
		global:   codeman.NewArena(globalAddr, mem.Map(globalAddr, codeSize)),
		domain:   codeman.NewArena(domainAddr, mem.Map(domainAddr, codeSize)),
		registry: registry.New(),
		symbols: symbol.Table{
			symbol.GetLMFAddr:             getLMFAddr,
			symbol.InterruptionCheckpoint: checkpoint,
			symbol.ThrowExceptionAddr:     throwVarAddr,
			symbol.DebuggerSingleStep:     singleStepHandler,
			symbol.DebuggerBreakpoint:     breakpointHandler,
		},
		aot:      aot,
		generics: make(map[kind.Kind]uint64),
		got:      make(map[string]uint64),
	}

	for k := kind.Kind(0); k < kind.NumKinds; k++ {
		e.symbols[symbol.TrampolineFunc(k)] = handlerAddr(k)
	}

	mem.Map(dataAddr, dataSize)
	mem.Map(heapAddr, heapSize)
	mem.Map(stackAddr, stackSize)
	mem.PutUint64(throwVarAddr, throwException)

	e.gen = tramp.New(tramp.Config{
		Global:   e.global,
		Domain:   e.domain,
		Memory:   mem,
		Symbols:  e.symbols,
		Generics: e,
		Registry: e.registry,
	})

	e.m.Bind(getLMFAddr, func(m *sim.Machine) {
		m.ClobberCallerSaved(0x6c6d66)
		m.X[0] = chainSlotAddr
	})
	e.m.Bind(checkpoint, func(m *sim.Machine) {
		m.ClobberCallerSaved(0x636b7074)
		m.X[0] = e.pending
		e.pending = 0
	})

	return e
}

// GenericTrampoline implements tramp.CodeLookup.
func (e *env) GenericTrampoline(k kind.Kind) uint64 {
	if addr, found := e.generics[k]; found {
		return addr
	}

	t := e.gen.CreateGeneric(k, e.aot)
	e.link(t)
	e.generics[k] = t.Addr
	return t.Addr
}

// link resolves the relocations of ahead-of-time code through GOT slots, the
// way a loader would.
func (e *env) link(t *tramp.Trampoline) {
	e.t.Helper()

	if !e.aot {
		if len(t.Relocs) != 0 {
			e.t.Fatalf("%s: immediate-mode code has relocations", t.Name)
		}
		return
	}

	err := reloc.ApplyAll(t.Code, t.Addr, t.Relocs, func(name string) (uint64, error) {
		addr, found := e.symbols[name]
		if !found {
			return 0, errors.Errorf("undefined symbol: %s", name)
		}
		slot, found := e.got[name]
		if !found {
			slot = gotAddr + uint64(len(e.got))*8
			e.got[name] = slot
		}
		e.mem.PutUint64(slot, addr)
		return slot, nil
	})
	if err != nil {
		e.t.Fatal(err)
	}
}

func (e *env) bind(addr uint64, f sim.Native) {
	e.m.Bind(addr, f)
}

// alloc zeroed heap memory.
func (e *env) alloc(size uint64) uint64 {
	addr := heapAddr + e.heapUsed
	e.heapUsed += (size + 15) &^ 15
	if e.heapUsed > heapSize {
		e.t.Fatal("simulated heap exhausted")
	}
	return addr
}

func (e *env) load(addr uint64) uint64 {
	x, ok := e.mem.Uint64(addr)
	if !ok {
		e.t.Fatalf("load from unmapped address %#x", addr)
	}
	return x
}

func (e *env) store(addr, x uint64) {
	if !e.mem.PutUint64(addr, x) {
		e.t.Fatalf("store to unmapped address %#x", addr)
	}
}

// call addr with a fresh stack, returning to exitAddr.
func (e *env) call(addr uint64) {
	e.t.Helper()

	e.m.SP = stackTop
	if err := e.m.Call(addr, exitAddr, stepLimit); err != nil {
		e.t.Fatalf("%v (pc %#x)", err, e.m.PC)
	}
}

func catch(f func()) (err error) {
	defer func() {
		err = tramp.Error(recover())
	}()

	f()
	return
}
