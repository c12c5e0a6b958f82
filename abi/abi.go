// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package abi describes the object and frame conventions of the managed
// engine which the generated trampolines must agree with.
package abi

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	Word = 8 // Bytes per general-purpose register and pointer.

	NumRegs      = 32 // General-purpose register slots in a context.
	NumFloatArgs = 8  // Floating-point argument registers D0-D7.
	NumArgs      = 9  // Integer argument registers X0-X8 (X8 is the result location).
)

// ABI parameters which depend on the engine's object model.
type ABI struct {
	// ObjectHeaderSize is added to a boxed receiver to reach its value.
	ObjectHeaderSize uint32 `toml:"object_header_size"`

	// VTableContextOffset locates the class-level generic context array
	// pointer inside a vtable.
	VTableContextOffset uint32 `toml:"vtable_context_offset"`

	// MethodContextHeaderSize is the size of the fixed part of a
	// method-level generic context, which precedes its first slot array
	// link.
	MethodContextHeaderSize uint32 `toml:"method_context_header_size"`

	// FrameAlignment of the stack pointer.
	FrameAlignment int32 `toml:"frame_alignment"`
}

var Default = ABI{
	ObjectHeaderSize:        2 * Word,
	VTableContextOffset:     6 * Word,
	MethodContextHeaderSize: 2 * Word,
	FrameAlignment:          16,
}

func (a ABI) Validate() error {
	switch {
	case a.ObjectHeaderSize > 0xfff:
		return errors.Errorf("object header size %d exceeds 4095", a.ObjectHeaderSize)

	case a.VTableContextOffset%Word != 0:
		return errors.Errorf("vtable context offset %d is not word-aligned", a.VTableContextOffset)

	case a.MethodContextHeaderSize == 0 || a.MethodContextHeaderSize%Word != 0:
		return errors.Errorf("method context header size %d is not a positive multiple of word size", a.MethodContextHeaderSize)

	case a.FrameAlignment < 16 || a.FrameAlignment&(a.FrameAlignment-1) != 0:
		return errors.Errorf("frame alignment %d is not a power of two of at least 16", a.FrameAlignment)
	}

	return nil
}

// Load a TOML profile.  Missing keys keep their default values; unknown keys
// are rejected.
func Load(r io.Reader) (a ABI, err error) {
	a = Default

	if err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&a); err != nil {
		err = errors.Wrap(err, "abi profile")
		return
	}

	err = a.Validate()
	return
}

func LoadFile(filename string) (a ABI, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return
	}
	defer f.Close()

	return Load(f)
}
