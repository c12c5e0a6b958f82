// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package atomic

import (
	"encoding/binary"
	"strings"
	"testing"

	"gate.computer/tramp/internal/pan"
)

func TestStore(t *testing.T) {
	b := make([]byte, 16)

	StoreUint32(b[4:], 0x94000001)
	if binary.NativeEndian.Uint32(b[4:]) != 0x94000001 || LoadUint32(b[4:]) != 0x94000001 {
		t.Errorf("%x", b)
	}

	StoreUint64(b[8:], 0x123456789abcdef0)
	if binary.NativeEndian.Uint64(b[8:]) != 0x123456789abcdef0 || LoadUint64(b[8:]) != 0x123456789abcdef0 {
		t.Errorf("%x", b)
	}
}

func TestMisaligned(t *testing.T) {
	b := make([]byte, 16)

	for name, f := range map[string]func(){
		"StoreUint64": func() { StoreUint64(b[4:], 0) },
		"StoreUint32": func() { StoreUint32(b[2:], 0) },
		"LoadUint64":  func() { LoadUint64(b[4:]) },
		"LoadUint32":  func() { LoadUint32(b[1:]) },
		"short view":  func() { LoadUint64(b[12:]) },
	} {
		err := func() (err error) {
			defer func() {
				err = pan.Error(recover())
			}()

			f()
			return
		}()
		if err == nil {
			t.Errorf("%s: accepted", name)
		} else if !strings.Contains(err.Error(), "access") {
			t.Errorf("%s: %v", name, err)
		}
	}
}
