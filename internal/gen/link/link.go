// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package link tracks forward branches within a trampoline.
package link

import (
	"gate.computer/tramp/internal/pan"
	"github.com/pkg/errors"
)

// L is a label.  Sites are the code offsets following the branch
// instructions which target the label.
type L struct {
	Sites []int32
	Addr  int32
}

func (l *L) AddSite(addr int32) {
	l.Sites = append(l.Sites, addr)
}

func (l *L) AddSites(addrs []int32) {
	l.Sites = append(l.Sites, addrs...)
}

func (l *L) FinalAddr() int32 {
	if l.Addr == 0 {
		pan.Panic(errors.New("link address undefined while updating branch instruction"))
	}
	return l.Addr
}
