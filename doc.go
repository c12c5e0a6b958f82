// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tramp generates AArch64 trampolines for a managed code runtime.
//
// Trampolines are small machine code stubs which connect compiled code to
// runtime routines: generic trampolines save the register state, link a
// frame-chain record and call a handler; specific trampolines bind an
// argument to a generic trampoline; the rest adjust receivers, load generic
// contexts or report debugger events.
//
// # Addressing
//
// Runtime addresses are embedded as immediate values, or, in ahead-of-time
// mode, loaded from global offset table slots through relocated instruction
// sequences.  The relocations are returned with the trampoline.
//
// # Errors
//
// Generation doesn't return errors.  Invariant violations (such as code which
// doesn't fit in its reservation, an unresolved symbol, or an unexpected
// instruction at a patch site) panic.  The panic value can be converted to an
// error with Error, which re-panics values of unrelated origin.  Errors
// implementing the following interface indicate that generated code doesn't
// fit in its reservation:
//
//	interface {
//		BufferSizeLimit() string
//	}
package tramp
