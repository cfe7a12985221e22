// Command lpc-cli drives the LPIR pipeline end to end: parse, verify,
// lower, allocate registers, lay out frames, emit RV32IM, and
// optionally disassemble, dump a debug ELF, or run the result under
// the reference interpreter. It does not run the fixed-point rewrite
// pass. Grounded on
// kanso-lang-kanso/cmd/kanso-cli's flag-free "parse and report"
// shape, generalized with flags for the extra pipeline stages this
// toolchain has that kanso's does not.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"lpc/internal/backend/emit"
	"lpc/internal/emu"
	"lpc/internal/ir"
	"lpc/internal/riscv32"
	"lpc/internal/verifier"
)

func main() {
	disasm := flag.Bool("disasm", false, "print a disassembly of the emitted code")
	dumpELF := flag.String("dump-elf", "", "write a debug ELF image to the given path")
	run := flag.Bool("run", false, "execute the emitted code under the reference interpreter")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: lpc-cli [-disasm] [-dump-elf path] [-run] <file.lpir>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	mod, err := parseDocument(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	if errs := verifier.VerifyModule(mod); len(errs) > 0 {
		for _, e := range errs {
			color.Red("verify: %s", e)
		}
		os.Exit(1)
	}

	emitted, err := emit.EmitModule(mod)
	if err != nil {
		color.Red("emit: %s", err)
		os.Exit(1)
	}
	code, err := emitted.Encode()
	if err != nil {
		color.Red("encode: %s", err)
		os.Exit(1)
	}

	entryOffset := emitted.Symbols[mod.Entry] * 4
	color.Green("compiled %s: %d bytes, entry %%%s at +0x%x", path, len(code), mod.Entry, entryOffset)

	if *disasm {
		for _, line := range riscv32.DisassembleAll(code) {
			fmt.Println(line)
		}
	}

	if *dumpELF != "" {
		elfImage := emit.WriteELF(code, entryOffset)
		if err := os.WriteFile(*dumpELF, elfImage, 0o644); err != nil {
			color.Red("dump-elf: %s", err)
			os.Exit(1)
		}
		color.Green("wrote debug ELF to %s", *dumpELF)
	}

	if *run {
		runUnderInterpreter(code, entryOffset)
	}
}

// parseDocument tries mod.lpir's module form first, falling back to a
// bare function wrapped in a single-entry module, mirroring
// internal/lspsrv's same two-shape acceptance.
func parseDocument(path, source string) (*ir.Module, error) {
	mod, _, err := ir.ParseModule(path, source)
	if err == nil {
		return mod, nil
	}
	if pe, ok := err.(*ir.ParseError); !ok || pe.Message != "expected a module, found a bare function" {
		return nil, err
	}

	fn, err := ir.ParseFunction(path, source)
	if err != nil {
		return nil, err
	}
	mod = ir.NewModule()
	mod.Entry = fn.Name
	if err := mod.AddFunction(fn); err != nil {
		return nil, err
	}
	return mod, nil
}

func reportParseError(src string, err error) {
	pe, ok := err.(*ir.ParseError)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}
	color.Red("syntax error in %s at line %d, column %d: %s", pe.Filename, pe.Line, pe.Column, pe.Message)
}

// runUnderInterpreter executes code from entryOffset until it halts or
// blocks on a syscall the CLI doesn't know how to service, printing
// a0 (the conventional return-value register) on exit.
func runUnderInterpreter(code []byte, entryOffset int) {
	const dataSize = 64 * 1024
	mem := emu.NewMemory(code, dataSize)
	e := emu.NewEmulator(mem)
	e.PC = uint32(entryOffset)

	for {
		result, err := e.Step()
		if err != nil {
			color.Red("run: %s", err)
			os.Exit(1)
		}
		switch result.Kind {
		case emu.StepHalted:
			color.Green("halted: a0 = %d", e.Regs[riscv32.A0])
			return
		case emu.StepSyscall:
			color.Yellow("syscall %d (a0=%d) not serviced by lpc-cli, halting",
				result.Syscall.Number, result.Syscall.Args[0])
			return
		}
	}
}
