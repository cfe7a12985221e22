package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

var irParser = participle.MustBuild[programAST](
	participle.Lexer(lpirLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// ParseError wraps a textual-LPIR syntax error with its source
// position, mirroring the caret-style diagnostics the teacher's CLI
// prints for its own grammar.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
}

func wrapParseError(filename string, err error) error {
	if pe, ok := err.(participle.Error); ok {
		pos := pe.Position()
		return &ParseError{Filename: filename, Line: pos.Line, Column: pos.Column, Message: pe.Message()}
	}
	return err
}

// ParseFunction parses a single `function %name(...) -> ... { ... }`
// unit. Call result types default to I32 when parsed outside a module,
// since the callee's real signature isn't available to resolve them;
// ParseModule resolves them against the module's own functions.
func ParseFunction(filename, source string) (*Function, error) {
	prog, err := irParser.ParseString(filename, source)
	if err != nil {
		return nil, wrapParseError(filename, err)
	}
	if prog.Function == nil {
		return nil, &ParseError{Filename: filename, Message: "expected a function, found a module"}
	}
	return buildFunction(prog.Function, nil)
}

// ParseModule parses a `module { entry: %name ... }` unit and resolves
// call-result types against sibling functions' signatures.
func ParseModule(filename, source string) (*Module, string, error) {
	prog, err := irParser.ParseString(filename, source)
	if err != nil {
		return nil, "", wrapParseError(filename, err)
	}
	if prog.Module == nil {
		return nil, "", &ParseError{Filename: filename, Message: "expected a module, found a bare function"}
	}

	m := NewModule()
	m.Entry = prog.Module.Entry
	for _, fast := range prog.Module.Functions {
		fn, err := buildFunction(fast, nil)
		if err != nil {
			return nil, "", err
		}
		if err := m.AddFunction(fn); err != nil {
			return nil, "", err
		}
	}
	resolveCallResultTypes(m)
	return m, m.Entry, nil
}

// resolveCallResultTypes rewrites Call instructions' result types from
// the callee's declared signature, once every function in the module
// is known.
func resolveCallResultTypes(m *Module) {
	for _, fn := range m.FunctionsInOrder() {
		for _, blk := range fn.Blocks() {
			for _, inst := range fn.BlockInsts(blk) {
				data, _ := fn.DFG.InstData(inst)
				if data.Op != OpCall {
					continue
				}
				callee, ok := m.Lookup(data.Callee)
				if !ok {
					continue
				}
				for i, r := range data.Results {
					if i < len(callee.Signature.Returns) {
						fn.DFG.valueType[r] = callee.Signature.Returns[i]
					}
				}
			}
		}
	}
}

func parseTypeOrDefault(s string) Type {
	ty, ok := ParseType(s)
	if !ok {
		panic("ir: parser: invalid type " + s)
	}
	return ty
}

func parseIntLiteral(s string) int64 {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var v uint64
	if strings.HasPrefix(s, "0x") {
		v, _ = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, _ = strconv.ParseUint(s, 10, 64)
	}
	if neg {
		return -int64(v)
	}
	return int64(v)
}

func parseFloatLiteral(s string) float32 {
	f, _ := strconv.ParseFloat(s, 32)
	return float32(f)
}

// buildFunction lowers a parsed function AST into an ir.Function,
// resolving `v<n>`/`block<n>` names to freshly-allocated Values and
// Blocks in declaration order.
func buildFunction(fast *functionAST, _ *Module) (*Function, error) {
	paramTypes := make([]Type, len(fast.Params))
	for i, p := range fast.Params {
		paramTypes[i] = parseTypeOrDefault(p)
	}
	returnTypes := make([]Type, len(fast.Returns))
	for i, r := range fast.Returns {
		returnTypes[i] = parseTypeOrDefault(r)
	}

	fn := NewFunction(fast.Name, NewSignature(paramTypes, returnTypes))
	values := make(map[string]Value)
	blocks := make(map[string]Block)

	for _, bast := range fast.Blocks {
		blk := fn.DFG.makeBlock()
		fn.Layout.appendBlock(blk)
		blocks[bast.Label] = blk
	}

	// Block parameters are allocated here, block by block, so values
	// are numbered in textual order.
	for _, bast := range fast.Blocks {
		blk := blocks[bast.Label]
		bd := fn.DFG.blocks[blk]
		for _, p := range bast.Params {
			ty := parseTypeOrDefault(p.Type)
			v := fn.DFG.makeValue(ty)
			bd.Params = append(bd.Params, v)
			bd.ParamTypes = append(bd.ParamTypes, ty)
			fn.DFG.valueBlock[v], fn.DFG.valueInst[v] = blk, InvalidInst
			values[p.Value] = v
		}
		fn.DFG.blocks[blk] = bd
		for _, iast := range bast.Insts {
			if err := buildInst(fn, blk, iast, values, blocks); err != nil {
				return nil, err
			}
		}
	}
	return fn, nil
}

func lookupValue(values map[string]Value, name string) Value {
	v, ok := values[name]
	if !ok {
		panic("ir: parser: reference to undefined value " + name)
	}
	return v
}

func lookupValues(values map[string]Value, names []string) []Value {
	out := make([]Value, len(names))
	for i, n := range names {
		out[i] = lookupValue(values, n)
	}
	return out
}

func lookupBlock(blocks map[string]Block, name string) Block {
	b, ok := blocks[name]
	if !ok {
		panic("ir: parser: reference to undefined block " + name)
	}
	return b
}

func buildTarget(blocks map[string]Block, values map[string]Value, name string, argNames []string) BlockTarget {
	return BlockTarget{Block: lookupBlock(blocks, name), Args: lookupValues(values, argNames)}
}

// buildInst appends one parsed instruction to fn's already-laid-out
// block, allocating result Values and recording their names.
func buildInst(fn *Function, blk Block, iast *instAST, values map[string]Value, blocks map[string]Block) error {
	declareResults := func(types ...Type) []Value {
		results := make([]Value, len(types))
		for i, ty := range types {
			v := fn.DFG.makeValue(ty)
			results[i] = v
			if i < len(iast.Results) {
				values[iast.Results[i]] = v
			}
		}
		return results
	}
	insert := func(data InstData) {
		inst := fn.DFG.makeInst(data)
		fn.Layout.appendInst(inst, blk)
		fn.DFG.defineAtInst(inst, blk)
	}

	switch {
	case iast.Binary != nil:
		b := iast.Binary
		lhs := lookupValue(values, b.Lhs)
		ty, _ := fn.ValueType(lhs)
		r := declareResults(ty)[0]
		rhs := lookupValue(values, b.Rhs)
		var data InstData
		switch b.Op {
		case "iadd":
			data = NewIadd(r, lhs, rhs)
		case "isub":
			data = NewIsub(r, lhs, rhs)
		case "imul":
			data = NewImul(r, lhs, rhs)
		case "idiv":
			data = NewIdiv(r, lhs, rhs)
		case "irem":
			data = NewIrem(r, lhs, rhs)
		}
		insert(data)

	case iast.Icmp != nil:
		c := iast.Icmp
		cond, ok := ParseIntCC(c.Cond)
		if !ok {
			return &ParseError{Message: "unknown integer comparison " + c.Cond}
		}
		r := declareResults(U32)[0]
		insert(NewIcmp(r, cond, lookupValue(values, c.Lhs), lookupValue(values, c.Rhs)))

	case iast.Fcmp != nil:
		c := iast.Fcmp
		cond, ok := ParseFloatCC(c.Cond)
		if !ok {
			return &ParseError{Message: "unknown float comparison " + c.Cond}
		}
		r := declareResults(U32)[0]
		insert(NewFcmp(r, cond, lookupValue(values, c.Lhs), lookupValue(values, c.Rhs)))

	case iast.Iconst != nil:
		r := declareResults(I32)[0]
		insert(NewIconst(r, parseIntLiteral(iast.Iconst.Value)))

	case iast.Fconst != nil:
		r := declareResults(F32)[0]
		insert(NewFconst(r, parseFloatLiteral(iast.Fconst.Value)))

	case iast.Jump != nil:
		j := iast.Jump
		insert(NewJump(lookupBlock(blocks, j.Target), lookupValues(values, j.Args)))

	case iast.Brif != nil:
		br := iast.Brif
		cond := lookupValue(values, br.Cond)
		t := buildTarget(blocks, values, br.TrueBlk, br.TrueArgs)
		f := buildTarget(blocks, values, br.FalseBlk, br.FalseArgs)
		insert(InstData{Op: OpBr, Args: []Value{cond}, Targets: []BlockTarget{t, f}})

	case iast.Return != nil:
		insert(NewReturn(lookupValues(values, iast.Return.Args)))

	case iast.Call != nil:
		c := iast.Call
		// Result types default to I32; ParseModule corrects them once
		// every function's signature is known.
		types := make([]Type, len(iast.Results))
		for i := range types {
			types[i] = I32
		}
		results := declareResults(types...)
		insert(NewCall(results, c.Callee, lookupValues(values, c.Args)))

	case iast.Syscall != nil:
		s := iast.Syscall
		insert(NewSyscall(parseIntLiteral(s.Number), lookupValues(values, s.Args)))

	case iast.Halt != nil:
		insert(NewHalt())

	case iast.Load != nil:
		l := iast.Load
		ty := parseTypeOrDefault(l.Type)
		r := declareResults(ty)[0]
		insert(NewLoad(r, ty, lookupValue(values, l.Address)))

	case iast.Store != nil:
		s := iast.Store
		insert(NewStore(lookupValue(values, s.Address), lookupValue(values, s.Value)))

	case iast.Trap != nil:
		code, ok := ParseTrapCode(iast.Trap.Code)
		if !ok {
			return &ParseError{Message: "unknown trap code " + iast.Trap.Code}
		}
		insert(NewTrap(code))

	case iast.Trapz != nil:
		code, ok := ParseTrapCode(iast.Trapz.Code)
		if !ok {
			return &ParseError{Message: "unknown trap code " + iast.Trapz.Code}
		}
		insert(NewTrapz(lookupValue(values, iast.Trapz.Cond), code))

	case iast.Trapnz != nil:
		code, ok := ParseTrapCode(iast.Trapnz.Code)
		if !ok {
			return &ParseError{Message: "unknown trap code " + iast.Trapnz.Code}
		}
		insert(NewTrapnz(lookupValue(values, iast.Trapnz.Cond), code))
	}
	return nil
}
