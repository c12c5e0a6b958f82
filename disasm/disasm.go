// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm prints trampoline listings.  Instructions are decoded with
// Capstone when built with the capstone tag; otherwise raw instruction words
// are printed.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"gate.computer/tramp/reloc"
)

type insn struct {
	addr     uint64
	mnemonic string
	operands string
	pad      bool
}

// Fprint a listing of code located at addr.  Relocation sites are annotated
// with their symbols.  Repeated padding is elided.
func Fprint(w io.Writer, name string, addr uint64, code []byte, relocs []reloc.Record) error {
	insns, err := decode(code, addr)
	if err != nil {
		return err
	}

	notes := make(map[uint64]string)
	for _, r := range relocs {
		notes[addr+uint64(r.Offset)] = fmt.Sprintf("%s %s", r.Kind, r.Symbol)
	}

	var lastAddr uint64
	if len(insns) > 0 {
		lastAddr = insns[len(insns)-1].addr
	}
	addrFmt := fmt.Sprintf("%%0%dx", (len(fmt.Sprintf("%x", lastAddr))+7)&^7)

	if _, err := fmt.Fprintf(w, "%s:\n", name); err != nil {
		return err
	}

	skipPad := false

	for _, x := range insns {
		if x.pad {
			if skipPad {
				continue
			}
			skipPad = true
		} else {
			skipPad = false
		}

		line := fmt.Sprintf(addrFmt+"\t%s", x.addr, strings.TrimSpace(x.mnemonic+"\t"+x.operands))
		if note, found := notes[x.addr]; found {
			line += "\t; " + note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(w)
	return err
}
