// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"encoding/binary"
	"fmt"
)

const brk = 0xd4200000

func word(code []byte, addr uint64) insn {
	x := binary.LittleEndian.Uint32(code)
	return insn{
		addr:     addr,
		mnemonic: ".inst",
		operands: fmt.Sprintf("%#08x", x),
		pad:      x == brk,
	}
}
