// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tramp

import (
	"gate.computer/tramp/abi"
	"gate.computer/tramp/buffer"
	"gate.computer/tramp/codeman"
	"gate.computer/tramp/internal/code"
	"gate.computer/tramp/internal/isa/arm64"
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/registry"
	"gate.computer/tramp/reloc"
	"gate.computer/tramp/symbol"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CodeLookup finds the generic trampoline of a kind, generating it if
// necessary.
type CodeLookup interface {
	GenericTrampoline(k kind.Kind) (addr uint64)
}

// Config of a Generator.  Global is required.  Memory is required for
// patching.  Symbols is required for immediate-mode code which calls runtime
// routines, and Generics for specific trampolines.
type Config struct {
	ABI      abi.ABI
	Global   codeman.Reserver // Process-wide code memory.
	Domain   codeman.Reserver // Per-domain code memory.  Defaults to Global.
	Flusher  codeman.Flusher
	Memory   codeman.Memory
	Symbols  symbol.Resolver
	Generics CodeLookup
	Registry *registry.Registry
	Logger   *zap.Logger
}

// Trampoline is generated code.
type Trampoline struct {
	Name   string
	Addr   uint64
	Code   []byte // Written part of the reservation.
	Relocs []reloc.Record
}

func (t *Trampoline) Size() int { return len(t.Code) }

// Generator is safe for concurrent use if the collaborators are.
type Generator struct {
	abi      abi.ABI
	global   codeman.Reserver
	domain   codeman.Reserver
	flusher  codeman.Flusher
	memory   codeman.Memory
	symbols  symbol.Resolver
	generics CodeLookup
	registry *registry.Registry
	log      *zap.Logger
}

func New(config Config) *Generator {
	g := &Generator{
		abi:      config.ABI,
		global:   config.Global,
		domain:   config.Domain,
		flusher:  config.Flusher,
		memory:   config.Memory,
		symbols:  config.Symbols,
		generics: config.Generics,
		registry: config.Registry,
		log:      config.Logger,
	}

	if g.abi == (abi.ABI{}) {
		g.abi = abi.Default
	}
	pan.Check(g.abi.Validate())

	if g.domain == nil {
		g.domain = g.global
	}
	if g.flusher == nil {
		g.flusher = codeman.NopFlusher{}
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}

	return g
}

func (g *Generator) ABI() abi.ABI { return g.abi }

// Error returns nil if x is nil, an error if x is a panic value raised by
// this module, and panics again otherwise.
func Error(x any) error {
	return pan.Error(x)
}

func (g *Generator) reserve(r codeman.Reserver, size int) *arm64.Asm {
	if r == nil {
		pan.Panic(errors.New("no code memory reserver configured"))
	}

	region, err := r.Reserve(size)
	if err != nil {
		pan.Panic(errors.Wrap(err, "reserving trampoline code memory"))
	}

	return &arm64.Asm{
		Text: code.Buf{
			Buffer: buffer.NewStatic(region.Bytes),
			Base:   region.Addr,
		},
	}
}

// target of a runtime routine.
func (g *Generator) target(name string, aot bool) reloc.Target {
	if aot {
		return reloc.Sym(name)
	}

	if g.symbols == nil {
		pan.Panic(errors.Errorf("no symbol resolver configured for %s", name))
	}
	addr, found := g.symbols.ResolveSymbol(name)
	if !found {
		pan.Panic(errors.Errorf("unresolved runtime symbol: %s", name))
	}
	return reloc.Imm(addr)
}

func (g *Generator) generic(k kind.Kind) uint64 {
	if g.generics == nil {
		pan.Panic(errors.Errorf("no generic trampoline lookup configured for %s", k))
	}
	return g.generics.GenericTrampoline(k)
}

func (g *Generator) finish(name string, a *arm64.Asm) *Trampoline {
	t := &Trampoline{
		Name:   name,
		Addr:   a.Text.Base,
		Code:   a.Text.Bytes(),
		Relocs: a.Relocs,
	}

	g.flusher.FlushICache(t.Addr, t.Size())

	if g.registry != nil {
		err := g.registry.Register(registry.Info{
			Name:   t.Name,
			Addr:   t.Addr,
			Size:   t.Size(),
			Relocs: len(t.Relocs),
		})
		if err != nil {
			pan.Panic(err)
		}
	}

	if ce := g.log.Check(zap.DebugLevel, "trampoline"); ce != nil {
		ce.Write(
			zap.String("name", t.Name),
			zap.Uint64("addr", t.Addr),
			zap.Int("size", t.Size()),
			zap.Int("relocs", len(t.Relocs)),
		)
	}

	return t
}

// view of mapped memory for patching.
func (g *Generator) view(addr uint64, size int) []byte {
	if g.memory == nil {
		pan.Panic(errors.New("no memory view configured for patching"))
	}

	b := g.memory.View(addr, size)
	if len(b) < size {
		pan.Panic(errors.Errorf("patch site %#x is not mapped", addr))
	}
	return b
}
