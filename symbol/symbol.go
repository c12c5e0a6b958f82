// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symbol names the runtime entry points which trampolines reference.
package symbol

import (
	"fmt"
	"sort"

	"gate.computer/tramp/kind"
	"gate.computer/tramp/rgctx"
)

// Runtime routines.
const (
	GetLMFAddr             = "get_lmf_addr"                          // Returns the address of the thread's frame-chain slot.
	InterruptionCheckpoint = "thread_interruption_checkpoint_noraise" // Returns pending exception or zero.
	ThrowExceptionAddr     = "throw_exception_addr"                  // Variable holding the exception entry point.
	DebuggerSingleStep     = "debugger_single_step_from_context"
	DebuggerBreakpoint     = "debugger_breakpoint_from_context"
)

// TrampolineFunc is the handler routine of a generic trampoline kind.
func TrampolineFunc(k kind.Kind) string {
	return fmt.Sprintf("trampoline_func_%d", int(k))
}

// SpecificLazyFetch is the specific trampoline which resolves a slot.
func SpecificLazyFetch(s rgctx.Slot) string {
	return fmt.Sprintf("specific_trampoline_lazy_fetch_%d", uint32(s))
}

// Names of trampolines, for code info registries.

func Generic(k kind.Kind) string {
	return "generic_trampoline_" + k.String()
}

func Specific(k kind.Kind) string {
	return "specific_trampoline_" + k.String()
}

func LazyFetch(s rgctx.Slot) string {
	return "rgctx_fetch_trampoline_" + s.String()
}

const (
	GeneralLazyFetch = "rgctx_fetch_trampoline_general"
	Unbox            = "unbox_trampoline"
	StaticContext    = "static_rgctx_trampoline"
	SingleStep       = "sdb_single_step_trampoline"
	Breakpoint       = "sdb_breakpoint_trampoline"
)

// Resolver provides runtime addresses for immediate-mode code.
type Resolver interface {
	ResolveSymbol(name string) (addr uint64, found bool)
}

// Table is a simple Resolver.
type Table map[string]uint64

func (t Table) ResolveSymbol(name string) (addr uint64, found bool) {
	addr, found = t[name]
	return
}

// Names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
