// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cache memoizes trampolines.
package cache

import (
	"sync"

	"gate.computer/tramp"
	"gate.computer/tramp/internal/pan"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/rgctx"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Cache creates each generic trampoline once, and serves as the generator's
// generic trampoline lookup.  Specific and lazy fetch trampolines may be
// generated more than once by racing callers; only one of them is kept.
type Cache struct {
	gen *tramp.Generator
	aot bool

	group    singleflight.Group
	mu       sync.RWMutex
	generics [kind.NumKinds]*tramp.Trampoline

	specific  sync.Map // specificKey -> *tramp.Trampoline
	lazyFetch sync.Map // rgctx.Slot -> *tramp.Trampoline
}

type specificKey struct {
	arg uint64
	k   kind.Kind
}

// New cache with a generator built from config.  The Generics field of
// config is ignored.
func New(config tramp.Config, aot bool) *Cache {
	c := &Cache{aot: aot}
	config.Generics = c
	c.gen = tramp.New(config)
	return c
}

func (c *Cache) Generator() *tramp.Generator { return c.gen }

// Generic trampoline of a kind.
func (c *Cache) Generic(k kind.Kind) *tramp.Trampoline {
	if !k.Valid() {
		pan.Panic(errors.Errorf("invalid trampoline kind: %d", int(k)))
	}

	c.mu.RLock()
	t := c.generics[k]
	c.mu.RUnlock()
	if t != nil {
		return t
	}

	x, err, _ := c.group.Do(k.String(), func() (any, error) {
		c.mu.RLock()
		t := c.generics[k]
		c.mu.RUnlock()
		if t != nil {
			return t, nil
		}

		var err error
		func() {
			defer func() {
				err = tramp.Error(recover())
			}()

			t = c.gen.CreateGeneric(k, c.aot)
		}()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.generics[k] = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		pan.Panic(err)
	}
	return x.(*tramp.Trampoline)
}

// GenericTrampoline implements tramp.CodeLookup.
func (c *Cache) GenericTrampoline(k kind.Kind) uint64 {
	return c.Generic(k).Addr
}

// Specific trampoline for an argument and kind.
func (c *Cache) Specific(arg uint64, k kind.Kind) *tramp.Trampoline {
	key := specificKey{arg, k}
	if x, found := c.specific.Load(key); found {
		return x.(*tramp.Trampoline)
	}

	x, _ := c.specific.LoadOrStore(key, c.gen.CreateSpecific(arg, k))
	return x.(*tramp.Trampoline)
}

// LazyFetch trampoline for a slot.
func (c *Cache) LazyFetch(slot rgctx.Slot) *tramp.Trampoline {
	if x, found := c.lazyFetch.Load(slot); found {
		return x.(*tramp.Trampoline)
	}

	x, _ := c.lazyFetch.LoadOrStore(slot, c.gen.CreateLazyFetch(slot, c.aot))
	return x.(*tramp.Trampoline)
}
