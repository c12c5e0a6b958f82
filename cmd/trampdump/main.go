// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Program trampdump generates trampolines into executable memory and lists
// them.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gate.computer/tramp"
	"gate.computer/tramp/abi"
	"gate.computer/tramp/cache"
	"gate.computer/tramp/codeman"
	"gate.computer/tramp/disasm"
	"gate.computer/tramp/kind"
	"gate.computer/tramp/registry"
	"gate.computer/tramp/rgctx"
	"gate.computer/tramp/symbol"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Placeholder addresses of runtime routines which are not given in a symbol
// file.
const placeholderBase = 0x7f0000000000

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	var (
		abiFile     = ""
		symbolFile  = ""
		aot         = false
		kinds       = "all"
		slots       = ""
		debug       = false
		dumpText    = false
		verbose     = false
		memorySize  = codeman.DefaultSize
		specificArg = uint64(0)
	)

	flag.StringVar(&abiFile, "abi", abiFile, "ABI profile (TOML)")
	flag.StringVar(&symbolFile, "symbols", symbolFile, "runtime symbol addresses (TOML)")
	flag.BoolVar(&aot, "aot", aot, "generate ahead-of-time code with relocations")
	flag.StringVar(&kinds, "kind", kinds, "comma-separated trampoline kinds, \"all\" or \"none\"")
	flag.StringVar(&slots, "slot", slots, "comma-separated generic context slots for lazy fetch trampolines (prefix m for method level)")
	flag.BoolVar(&debug, "debug", debug, "generate debugger event trampolines")
	flag.BoolVar(&dumpText, "disasm", dumpText, "print disassembly")
	flag.BoolVar(&verbose, "v", verbose, "verbose logging")
	flag.IntVar(&memorySize, "memsize", memorySize, "code memory size")
	flag.Uint64Var(&specificArg, "arg", specificArg, "argument of specific trampolines")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := dump(logger, options{
		abiFile:     abiFile,
		symbolFile:  symbolFile,
		aot:         aot,
		kinds:       kinds,
		slots:       slots,
		debug:       debug,
		disasm:      dumpText,
		memorySize:  memorySize,
		specificArg: specificArg,
	}); err != nil {
		logger.Fatal("trampdump failed", zap.Error(err))
	}
}

type options struct {
	abiFile     string
	symbolFile  string
	aot         bool
	kinds       string
	slots       string
	debug       bool
	disasm      bool
	memorySize  int
	specificArg uint64
}

func dump(logger *zap.Logger, opt options) (err error) {
	defer func() {
		if x := recover(); x != nil {
			err = tramp.Error(x)
		}
	}()

	a := abi.Default
	if opt.abiFile != "" {
		if a, err = abi.LoadFile(opt.abiFile); err != nil {
			return
		}
	}

	symbols, err := loadSymbols(opt.symbolFile)
	if err != nil {
		return
	}

	ks, err := parseKinds(opt.kinds)
	if err != nil {
		return
	}

	ss, err := parseSlots(opt.slots)
	if err != nil {
		return
	}

	mem, err := codeman.NewManager(opt.memorySize)
	if err != nil {
		return
	}
	defer mem.Close()

	reg := registry.New()

	c := cache.New(tramp.Config{
		ABI:      a,
		Global:   mem,
		Memory:   mem,
		Symbols:  symbols,
		Registry: reg,
		Logger:   logger,
	}, opt.aot)

	var ts []*tramp.Trampoline

	for _, k := range ks {
		ts = append(ts, c.Generic(k), c.Specific(opt.specificArg, k))
	}

	for _, s := range ss {
		if opt.aot {
			symbols[symbol.SpecificLazyFetch(s)] = c.Specific(uint64(s), kind.RGCTXLazyFetch).Addr
		}
		ts = append(ts, c.LazyFetch(s))
	}
	if opt.aot && len(ss) > 0 {
		ts = append(ts, c.Generator().CreateGeneralLazyFetch(true))
	}

	if opt.debug {
		ts = append(ts,
			c.Generator().CreateDebugEvent(true, opt.aot),
			c.Generator().CreateDebugEvent(false, opt.aot))
	}

	for _, t := range ts {
		if opt.disasm {
			if err = disasm.Fprint(os.Stdout, t.Name, t.Addr, t.Code, t.Relocs); err != nil {
				return
			}
		} else {
			fmt.Printf("%#x\t%d\t%d\t%s\n", t.Addr, t.Size(), len(t.Relocs), t.Name)
		}
	}

	logger.Info("generated",
		zap.Int("trampolines", reg.Len()),
		zap.Int("bytes", mem.Used()),
		zap.Bool("aot", opt.aot),
	)
	return
}

// loadSymbols from a TOML table of names and addresses.  Runtime routines
// which are missing get placeholder addresses.
func loadSymbols(filename string) (symbol.Table, error) {
	t := make(symbol.Table)

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		if err := toml.Unmarshal(data, &t); err != nil {
			return nil, errors.Wrap(err, filename)
		}
	}

	names := []string{
		symbol.GetLMFAddr,
		symbol.InterruptionCheckpoint,
		symbol.ThrowExceptionAddr,
		symbol.DebuggerSingleStep,
		symbol.DebuggerBreakpoint,
	}
	for k := kind.Kind(0); k < kind.NumKinds; k++ {
		names = append(names, symbol.TrampolineFunc(k))
	}

	for i, name := range names {
		if _, found := t[name]; !found {
			t[name] = placeholderBase + uint64(i)*0x1000
		}
	}

	return t, nil
}

func parseKinds(s string) (ks []kind.Kind, err error) {
	switch s {
	case "none", "":
		return

	case "all":
		for k := kind.Kind(0); k < kind.NumKinds; k++ {
			ks = append(ks, k)
		}
		return
	}

	for _, name := range strings.Split(s, ",") {
		k, ok := kind.Parse(strings.TrimSpace(name))
		if !ok {
			err = errors.Errorf("unknown trampoline kind: %q", name)
			return
		}
		ks = append(ks, k)
	}
	return
}

func parseSlots(s string) (ss []rgctx.Slot, err error) {
	if s == "" {
		return
	}

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		method := strings.HasPrefix(field, "m")

		var n uint64
		n, err = strconv.ParseUint(strings.TrimPrefix(field, "m"), 0, 31)
		if err != nil {
			err = errors.Wrapf(err, "generic context slot %q", field)
			return
		}
		ss = append(ss, rgctx.NewSlot(method, uint32(n)))
	}
	return
}
