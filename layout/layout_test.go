// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"math/rand"
	"testing"
)

func checkLayout(t *testing.T, req Sizes, alignment int32, l Layout) {
	t.Helper()

	if l.Size%alignment != 0 {
		t.Fatalf("%v: size is not aligned to %d", l, alignment)
	}
	if !l.Has(FrameBlock) || l.Offset(FrameBlock) != 0 || l.AreaSize(FrameBlock) != FrameBlockSize {
		t.Fatalf("%v: bad frame block", l)
	}

	used := make([]bool, l.Size)

	for a := FrameBlock; a < NumAreas; a++ {
		if a != FrameBlock && (req[a] == 0) != !l.Has(a) {
			t.Fatalf("%v: presence of %s does not match request %d", l, a, req[a])
		}
		if !l.Has(a) {
			continue
		}
		if l.AreaSize(a) < req[a] {
			t.Fatalf("%v: %s is smaller than requested", l, a)
		}

		offset := l.Offset(a)
		if offset%8 != 0 {
			t.Fatalf("%v: %s is misaligned", l, a)
		}

		for i := offset; i < offset+l.AreaSize(a); i++ {
			if i < 0 || i >= l.Size {
				t.Fatalf("%v: %s is out of range", l, a)
			}
			if used[i] {
				t.Fatalf("%v: %s overlaps", l, a)
			}
			used[i] = true
		}
	}
}

func TestDegenerate(t *testing.T) {
	l := Compute(Sizes{}, 16)
	if l.Size != FrameBlockSize {
		t.Error(l)
	}
	checkLayout(t, Sizes{}, 16, l)

	for a := RegContext; a < NumAreas; a++ {
		if l.Has(a) {
			t.Error(a, "present")
		}
	}
}

func TestGenericShape(t *testing.T) {
	req := Sizes{
		RegContext: 328,
		Arg:        8,
		Result:     8,
		FrameChain: 120,
	}

	l := Compute(req, 16)
	checkLayout(t, req, 16, l)

	if l.Size != 480 {
		t.Error(l)
	}
	if l.Offset(RegContext) != 16 || l.Offset(Arg) != 344 || l.Offset(Result) != 352 ||
		l.Offset(FrameChain) != 360 {
		t.Error(l)
	}
}

func TestRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		var req Sizes
		for a := RegContext; a < NumAreas; a++ {
			if r.Intn(3) != 0 {
				req[a] = int32(r.Intn(600))
			}
		}

		alignment := int32(8) << uint(r.Intn(4))
		checkLayout(t, req, alignment, Compute(req, alignment))
	}
}
