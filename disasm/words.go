// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !capstone

package disasm

func decode(code []byte, addr uint64) (insns []insn, err error) {
	for ; len(code) >= 4; code = code[4:] {
		insns = append(insns, word(code, addr))
		addr += 4
	}
	return
}
