// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kind

import (
	"testing"
)

func TestNames(t *testing.T) {
	for k := Kind(0); k < NumKinds; k++ {
		name := k.String()
		if name == "" {
			t.Fatal(int(k), "has no name")
		}

		parsed, ok := Parse(name)
		if !ok || parsed != k {
			t.Errorf("%s parsed as %v", name, parsed)
		}
	}

	if _, ok := Parse("bogus"); ok {
		t.Error("bogus kind parsed")
	}
	if NumKinds.Valid() || Kind(-1).Valid() {
		t.Error("invalid kind is valid")
	}
}

func TestPredicates(t *testing.T) {
	for k := Kind(0); k < NumKinds; k++ {
		if k.ReturnsValue() && !k.MustReturn() {
			t.Error(k, "returns value without returning")
		}
		if k.Jump() && k.MustReturn() {
			t.Error(k, "returns without a caller")
		}
	}

	if !RGCTXLazyFetch.ReturnsValue() {
		t.Error("lazy fetch result is discarded")
	}
	if !Jump.Jump() || JIT.Jump() {
		t.Error("jump predicate")
	}
}
