// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build tramp_nojit

package tramp

import (
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/rgctx"
	"github.com/pkg/errors"
)

// ErrDisabled is raised by every trampoline constructor in builds without
// code generation.
var ErrDisabled = errors.New("trampoline generation is not supported in this build")

func (*Generator) CreateGeneric(kind.Kind, bool) *Trampoline {
	pan.Panic(ErrDisabled)
	return nil
}

func (*Generator) CreateSpecific(uint64, kind.Kind) *Trampoline {
	pan.Panic(ErrDisabled)
	return nil
}

func (*Generator) CreateUnbox(uint64) *Trampoline {
	pan.Panic(ErrDisabled)
	return nil
}

func (*Generator) CreateStaticContext(uint64, uint64) *Trampoline {
	pan.Panic(ErrDisabled)
	return nil
}

func (*Generator) CreateLazyFetch(rgctx.Slot, bool) *Trampoline {
	pan.Panic(ErrDisabled)
	return nil
}

func (*Generator) CreateGeneralLazyFetch(bool) *Trampoline {
	pan.Panic(ErrDisabled)
	return nil
}

func (*Generator) CreateDebugEvent(bool, bool) *Trampoline {
	pan.Panic(ErrDisabled)
	return nil
}
