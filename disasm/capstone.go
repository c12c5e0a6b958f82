// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build capstone

package disasm

import (
	"github.com/bnagy/gapstone"
)

func decode(code []byte, addr uint64) (insns []insn, err error) {
	engine, err := gapstone.New(gapstone.CS_ARCH_ARM64, gapstone.CS_MODE_LITTLE_ENDIAN)
	if err != nil {
		return
	}
	defer engine.Close()

	err = engine.SetOption(gapstone.CS_OPT_SYNTAX, gapstone.CS_OPT_SYNTAX_DEFAULT)
	if err != nil {
		return
	}

	// Capstone stops at the first undecodable word; list it and resume.
	for len(code) > 0 {
		var decoded []gapstone.Instruction

		decoded, err = engine.Disasm(code, addr, 0)
		if err != nil && len(decoded) == 0 {
			err = nil
		}

		for _, x := range decoded {
			insns = append(insns, insn{
				addr:     uint64(x.Address),
				mnemonic: x.Mnemonic,
				operands: x.OpStr,
				pad:      x.Id == gapstone.ARM64_INS_BRK,
			})
		}

		n := len(decoded) * 4
		code = code[n:]
		addr += uint64(n)

		if len(code) >= 4 {
			insns = append(insns, word(code, addr))
			code = code[4:]
			addr += 4
		} else {
			break
		}
	}

	return
}
