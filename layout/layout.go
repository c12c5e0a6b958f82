// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout computes trampoline stack frame layouts.
package layout

import (
	"fmt"

	"gate.computer/tramp/abi"
	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
)

// Area of a stack frame.  Areas are laid out in declaration order, starting
// at the stack pointer.
type Area int

const (
	FrameBlock Area = iota // Saved frame pointer and link register.
	RegContext             // General-purpose registers indexed by number.
	Arg                    // Trampoline argument.
	Result                 // Handler result.
	FrameChain             // Frame-chain record.
	Context                // Complete register context record.

	NumAreas
)

const FrameBlockSize = 2 * abi.Word

var areaNames = [NumAreas]string{
	FrameBlock: "frame block",
	RegContext: "register context",
	Arg:        "argument",
	Result:     "result",
	FrameChain: "frame chain",
	Context:    "context",
}

func (a Area) String() string {
	if a >= 0 && a < NumAreas {
		return areaNames[a]
	}
	return fmt.Sprintf("area %d", int(a))
}

// Sizes of requested areas in bytes.  Zero means absent.  FrameBlock is
// always present regardless of its value.
type Sizes [NumAreas]int32

// Layout of a frame.  Offsets are relative to the frame pointer, which points
// to the lowest address of the frame.
type Layout struct {
	offsets [NumAreas]int32
	sizes   [NumAreas]int32
	Size    int32 // Multiple of alignment.
}

// Compute a layout.  Each area is rounded up to word size.
func Compute(req Sizes, alignment int32) (l Layout) {
	if alignment < abi.Word || alignment&(alignment-1) != 0 {
		pan.Panic(errors.Errorf("layout: invalid alignment %d", alignment))
	}

	req[FrameBlock] = FrameBlockSize

	var offset int32

	for a := FrameBlock; a < NumAreas; a++ {
		size := req[a]
		if size < 0 {
			pan.Panic(errors.Errorf("layout: negative %s size %d", a, size))
		}
		if size == 0 {
			l.offsets[a] = -1
			continue
		}

		size = (size + abi.Word - 1) &^ (abi.Word - 1)
		l.offsets[a] = offset
		l.sizes[a] = size
		offset += size
	}

	l.Size = (offset + alignment - 1) &^ (alignment - 1)
	return
}

func (l *Layout) Has(a Area) bool {
	return l.offsets[a] >= 0
}

// Offset of a present area.
func (l *Layout) Offset(a Area) int32 {
	if !l.Has(a) {
		pan.Panic(errors.Errorf("layout: %s area is absent", a))
	}
	return l.offsets[a]
}

// AreaSize is zero for absent areas.
func (l *Layout) AreaSize(a Area) int32 {
	return l.sizes[a]
}

func (l Layout) String() string {
	s := fmt.Sprintf("frame %d:", l.Size)
	for a := FrameBlock; a < NumAreas; a++ {
		if l.Has(a) {
			s += fmt.Sprintf(" %s@%d+%d", a, l.offsets[a], l.sizes[a])
		}
	}
	return s
}
