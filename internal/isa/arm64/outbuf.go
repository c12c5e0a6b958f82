// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm64

import (
	"encoding/binary"

	"gate.computer/tramp/internal/code"
	"gate.computer/tramp/internal/gen/reg"
	"gate.computer/tramp/internal/isa/arm64/in"
)

// outbuf collects a short instruction sequence so that it is written to the
// code buffer with a single capacity check.
type outbuf struct {
	buf  [64]byte
	size int
}

func (o *outbuf) copy(text *code.Buf) {
	copy(text.Extend(o.size), o.buf[:o.size])
}

func (o *outbuf) insn(i uint32) {
	binary.LittleEndian.PutUint32(o.buf[o.size:], i)
	o.size += 4
}

// moveImm64 is MOVZ followed by MOVK for each non-zero upper halfword.
func (o *outbuf) moveImm64(rd reg.R, value uint64) {
	o.insn(in.MOVZ.RdI16Hw(rd, uint32(value&0xffff), 0, in.Size64))
	for hw := uint32(1); hw < 4; hw++ {
		if x := uint32(value>>(hw*16)) & 0xffff; x != 0 {
			o.insn(in.MOVK.RdI16Hw(rd, x, hw, in.Size64))
		}
	}
}
