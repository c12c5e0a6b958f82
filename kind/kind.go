// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kind enumerates generic trampoline kinds.
package kind

import (
	"fmt"
)

type Kind int

const (
	JIT              = Kind(iota) // Compile the callee and patch the call site.
	Jump                          // Like JIT, but reached by a tail jump.  Never returns.
	ClassInit                     // Run a class initializer and return.
	GenericClassInit              // Like ClassInit, but the vtable arrives in X0.
	RGCTXLazyFetch                // Fill a generic context slot and return its value.
	AOT                           // Load ahead-of-time compiled code.
	AOTPLT                        // Resolve an indirect call table entry.
	Delegate                      // Initialize a delegate invocation.
	VCall                         // Resolve a virtual call.
	HandlerBlockGuard             // Resume after a guarded handler block.

	NumKinds
)

var names = [NumKinds]string{
	JIT:               "jit",
	Jump:              "jump",
	ClassInit:         "class_init",
	GenericClassInit:  "generic_class_init",
	RGCTXLazyFetch:    "rgctx_lazy_fetch",
	AOT:               "aot",
	AOTPLT:            "aot_plt",
	Delegate:          "delegate",
	VCall:             "vcall",
	HandlerBlockGuard: "handler_block_guard",
}

func (k Kind) String() string {
	if k >= 0 && k < NumKinds {
		return names[k]
	}
	return fmt.Sprintf("unknown kind %d", int(k))
}

// Parse a kind name.
func Parse(name string) (Kind, bool) {
	for k, s := range names {
		if s == name {
			return Kind(k), true
		}
	}
	return -1, false
}

// Valid kinds are enumerated above.
func (k Kind) Valid() bool {
	return k >= 0 && k < NumKinds
}

// HasArg kinds pass the value of X0 to the handler instead of the argument
// supplied by the specific trampoline.
func (k Kind) HasArg() bool {
	return k == GenericClassInit
}

// Jump kinds have no caller to return to.
func (k Kind) Jump() bool {
	return k == Jump
}

// MustReturn kinds return to the caller; the others branch to the address
// returned by the handler.
func (k Kind) MustReturn() bool {
	switch k {
	case RGCTXLazyFetch, ClassInit, GenericClassInit:
		return true
	}
	return false
}

// ReturnsValue kinds pass the handler result to the caller in X0.
func (k Kind) ReturnsValue() bool {
	return k == RGCTXLazyFetch
}
