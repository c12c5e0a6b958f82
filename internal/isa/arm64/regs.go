// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm64

import (
	"gate.computer/tramp/internal/gen/reg"
)

const (
	RegResult  = reg.R(0)
	RegVTable  = reg.R(0) // Class or method generic context owner.
	RegArg1    = reg.R(1)
	RegArg2    = reg.R(2)
	RegArg3    = reg.R(3)
	RegRGCTX   = reg.R(15) // Generic context.
	RegIP0     = reg.R(16) // Intra-procedure-call scratch.
	RegIP1     = reg.R(17) // Intra-procedure-call scratch; trampoline argument.
	RegFP      = reg.R(29)
	RegLink    = reg.R(30)
	RegSP      = reg.R(31)
	RegZero    = reg.R(31)
	RegDiscard = reg.R(31)
)

const NumFloatArgs = 8

// ArgRegs are X0-X8 (X8 is the indirect result location).
var ArgRegs = reg.Range(0, 8)

// AllRegs except FP and SP, which are maintained by frame setup and teardown.
var AllRegs = ^reg.Set(RegFP, RegSP)
