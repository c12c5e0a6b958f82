// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reg

import (
	"fmt"
	"math/bits"
	"strings"
)

// R is a general-purpose or floating-point register number.  Number 31 means
// either the stack pointer or the zero register depending on instruction.
type R byte

func (r R) String() string {
	return fmt.Sprintf("x%d", r)
}

// Mask is a set of general-purpose registers.
type Mask uint32

func Set(rs ...R) (m Mask) {
	for _, r := range rs {
		m |= 1 << r
	}
	return
}

// Range of registers from first to last, inclusive.
func Range(first, last R) (m Mask) {
	for r := first; r <= last; r++ {
		m |= 1 << r
	}
	return
}

func (m Mask) Has(r R) bool     { return m&(1<<r) != 0 }
func (m Mask) Without(r R) Mask { return m &^ (1 << r) }
func (m Mask) Len() int         { return bits.OnesCount32(uint32(m)) }

func (m Mask) String() string {
	var names []string
	for r := R(0); r < 32; r++ {
		if m.Has(r) {
			names = append(names, r.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}
