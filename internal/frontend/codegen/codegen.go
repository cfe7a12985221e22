// Package codegen translates internal/frontend/ast into LPIR, wiring
// the GLSL-subset front end into internal/ir's FunctionBuilder and
// SSABuilder (spec.md §4.1, §4.4). It follows the structured-control-
// flow recipe the Braun SSA construction algorithm is built for: every
// if/else and while creates blocks, registers their predecessor edges
// via SSABuilder.RecordJump as soon as they're known, and seals each
// block the moment its last predecessor is recorded. Variable reads
// and writes go through SSABuilder.ReadVariable/WriteVariable, which
// materializes block parameters (phis) on demand; codegen itself never
// threads values across a block boundary by hand.
package codegen

import (
	"fmt"

	"lpc/internal/frontend/ast"
	"lpc/internal/ir"
)

// CompileProgram lowers every function in prog into one ir.Module.
// Signatures are registered up front so a function may call another
// declared later in the source.
func CompileProgram(prog *ast.Program) (*ir.Module, error) {
	sigs := make(map[string]ir.Signature, len(prog.Functions))
	for _, fn := range prog.Functions {
		sig, err := signatureOf(fn)
		if err != nil {
			return nil, fmt.Errorf("codegen: %s: %w", fn.Name, err)
		}
		sigs[fn.Name] = sig
	}

	mod := ir.NewModule()
	for i, fn := range prog.Functions {
		irFn, err := compileFunction(fn, sigs)
		if err != nil {
			return nil, fmt.Errorf("codegen: %s: %w", fn.Name, err)
		}
		if err := mod.AddFunction(irFn); err != nil {
			return nil, err
		}
		if i == 0 {
			mod.Entry = fn.Name
		}
	}
	return mod, nil
}

func signatureOf(fn *ast.FunctionDecl) (ir.Signature, error) {
	params := make([]ir.Type, len(fn.Params))
	for i, p := range fn.Params {
		ty, err := convertType(p.Type)
		if err != nil {
			return ir.Signature{}, err
		}
		params[i] = ty
	}
	var returns []ir.Type
	if fn.HasReturn {
		ty, err := convertType(fn.ReturnType)
		if err != nil {
			return ir.Signature{}, err
		}
		returns = []ir.Type{ty}
	}
	return ir.NewSignature(params, returns), nil
}

func convertType(t ast.Type) (ir.Type, error) {
	switch t {
	case ast.TypeInt:
		return ir.I32, nil
	case ast.TypeUint, ast.TypeBool:
		return ir.U32, nil
	case ast.TypeFloat:
		return ir.F32, nil
	default:
		return 0, fmt.Errorf("unknown source type %q", t)
	}
}

// CodeGenBuilder holds the state threaded through one function's
// lowering: the instruction builder, the SSA construction state, and
// the lexical/loop stacks that resolve names and break/continue
// targets.
type CodeGenBuilder struct {
	fb      *ir.FunctionBuilder
	ssa     *ir.SSABuilder
	scopes  *ScopeStack
	loops   *LoopStack
	sigs    map[string]ir.Signature
	retType ir.Type
	hasRet  bool
}

func compileFunction(decl *ast.FunctionDecl, sigs map[string]ir.Signature) (*ir.Function, error) {
	sig := sigs[decl.Name]
	fn := ir.NewFunction(decl.Name, sig)
	cg := &CodeGenBuilder{
		fb:     ir.NewFunctionBuilder(fn),
		ssa:    ir.NewSSABuilder(fn),
		scopes: NewScopeStack(),
		loops:  NewLoopStack(),
		sigs:   sigs,
		hasRet: decl.HasReturn,
	}
	if decl.HasReturn {
		cg.retType = sig.Returns[0]
	}

	paramTypes := sig.Params
	entry, params := cg.fb.CreateBlock(paramTypes...)
	cg.fb.AppendBlock(entry)
	cg.ssa.SealBlock(entry) // entry has no predecessors to wait for

	cg.scopes.Push()
	defer cg.scopes.Pop()
	for i, p := range decl.Params {
		key := cg.scopes.Declare(p.Name)
		cg.ssa.DeclareVariable(key, paramTypes[i])
		cg.ssa.WriteVariable(key, entry, params[i])
	}

	terminated, err := cg.lowerBlock(decl.Body)
	if err != nil {
		return nil, err
	}
	if !terminated {
		if decl.HasReturn {
			cg.fb.Trap(ir.TrapUnreachable)
		} else {
			cg.fb.Return(nil)
		}
	}
	return fn, nil
}

// lowerBlock lowers stmts into the current block, switching blocks as
// nested control flow requires. It reports whether control can no
// longer fall through to whatever follows (a return/break/continue was
// reached), in which case the caller must not emit a further
// terminator for the path it was building.
func (cg *CodeGenBuilder) lowerBlock(stmts []ast.Stmt) (bool, error) {
	for _, stmt := range stmts {
		terminated, err := cg.lowerStmt(stmt)
		if err != nil {
			return false, err
		}
		if terminated {
			return true, nil
		}
	}
	return false, nil
}

func (cg *CodeGenBuilder) lowerStmt(stmt ast.Stmt) (bool, error) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return false, cg.lowerVarDecl(s)
	case *ast.AssignStmt:
		return false, cg.lowerAssign(s)
	case *ast.ExprStmt:
		_, err := cg.lowerExpr(s.Expr)
		return false, err
	case *ast.ReturnStmt:
		return true, cg.lowerReturn(s)
	case *ast.IfStmt:
		return cg.lowerIf(s)
	case *ast.WhileStmt:
		return false, cg.lowerWhile(s)
	case *ast.BreakStmt:
		return true, cg.lowerBreak()
	case *ast.ContinueStmt:
		return true, cg.lowerContinue()
	default:
		return false, fmt.Errorf("codegen: unsupported statement %T", stmt)
	}
}

func (cg *CodeGenBuilder) lowerVarDecl(decl *ast.VarDecl) error {
	ty, err := convertType(decl.Type)
	if err != nil {
		return err
	}
	key := cg.scopes.Declare(decl.Name)
	cg.ssa.DeclareVariable(key, ty)

	var val ir.Value
	if decl.Init != nil {
		val, err = cg.lowerExpr(decl.Init)
		if err != nil {
			return err
		}
	} else {
		val = cg.fb.Iconst(ty, 0)
	}
	cg.ssa.WriteVariable(key, cg.fb.CurrentBlock(), val)
	return nil
}

func (cg *CodeGenBuilder) lowerAssign(stmt *ast.AssignStmt) error {
	key, ok := cg.scopes.Resolve(stmt.Name)
	if !ok {
		return fmt.Errorf("codegen: assignment to undeclared variable %q", stmt.Name)
	}
	val, err := cg.lowerExpr(stmt.Expr)
	if err != nil {
		return err
	}
	cg.ssa.WriteVariable(key, cg.fb.CurrentBlock(), val)
	return nil
}

func (cg *CodeGenBuilder) lowerReturn(stmt *ast.ReturnStmt) error {
	if stmt.Void || stmt.Expr == nil {
		cg.fb.Return(nil)
		return nil
	}
	val, err := cg.lowerExpr(stmt.Expr)
	if err != nil {
		return err
	}
	cg.fb.Return([]ir.Value{val})
	return nil
}

func (cg *CodeGenBuilder) lowerBreak() error {
	frame, ok := cg.loops.Current()
	if !ok {
		return fmt.Errorf("codegen: break outside a loop")
	}
	jump := cg.fb.Jump(frame.exit, nil)
	cg.ssa.RecordJump(cg.fb.CurrentBlock(), jump, frame.exit)
	return nil
}

func (cg *CodeGenBuilder) lowerContinue() error {
	frame, ok := cg.loops.Current()
	if !ok {
		return fmt.Errorf("codegen: continue outside a loop")
	}
	jump := cg.fb.Jump(frame.header, nil)
	cg.ssa.RecordJump(cg.fb.CurrentBlock(), jump, frame.header)
	return nil
}

// lowerIf lowers an if/else into entry -> {then, else} -> merge, using
// two-predecessor sealing only on merge. then/else each have exactly
// one predecessor (the branch block) so they seal immediately.
func (cg *CodeGenBuilder) lowerIf(stmt *ast.IfStmt) (bool, error) {
	cond, err := cg.lowerExpr(stmt.Cond)
	if err != nil {
		return false, err
	}
	condBlock := cg.fb.CurrentBlock()

	thenBlock, _ := cg.fb.CreateBlock()
	elseBlock, _ := cg.fb.CreateBlock()

	br := cg.fb.Br(cond, thenBlock, elseBlock, nil, nil)
	cg.ssa.RecordJump(condBlock, br, thenBlock)
	cg.ssa.RecordJump(condBlock, br, elseBlock)
	cg.ssa.SealBlock(thenBlock)
	cg.ssa.SealBlock(elseBlock)

	cg.fb.AppendBlock(thenBlock)
	cg.scopes.Push()
	thenTerm, err := cg.lowerBlock(stmt.Then)
	cg.scopes.Pop()
	if err != nil {
		return false, err
	}
	thenEnd := cg.fb.CurrentBlock()

	cg.fb.AppendBlock(elseBlock)
	cg.scopes.Push()
	elseTerm, err := cg.lowerBlock(stmt.Else)
	cg.scopes.Pop()
	if err != nil {
		return false, err
	}
	elseEnd := cg.fb.CurrentBlock()

	if thenTerm && elseTerm {
		// Both arms already terminated (return/break/continue); there
		// is no fallthrough path left for a merge block to join, so
		// don't create one — verifier.checkReachability would flag an
		// empty block with no recorded predecessor.
		return true, nil
	}

	mergeBlock, _ := cg.fb.CreateBlock()
	if !thenTerm {
		j := cg.fb.Jump(mergeBlock, nil)
		cg.ssa.RecordJump(thenEnd, j, mergeBlock)
	}
	if !elseTerm {
		j := cg.fb.Jump(mergeBlock, nil)
		cg.ssa.RecordJump(elseEnd, j, mergeBlock)
	}
	cg.ssa.SealBlock(mergeBlock)
	cg.fb.AppendBlock(mergeBlock)
	return false, nil
}

// lowerWhile lowers a while loop into preheader -> header -> {body,
// exit}, with body looping back to header. header is left unsealed
// until the body's back-edge (and any continues) are known; exit is
// left unsealed until every break inside the body is known.
func (cg *CodeGenBuilder) lowerWhile(stmt *ast.WhileStmt) error {
	preheader := cg.fb.CurrentBlock()
	header, _ := cg.fb.CreateBlock()
	preJump := cg.fb.Jump(header, nil)
	cg.ssa.RecordJump(preheader, preJump, header)

	cg.fb.AppendBlock(header)
	cond, err := cg.lowerExpr(stmt.Cond)
	if err != nil {
		return err
	}
	condBlock := cg.fb.CurrentBlock()

	body, _ := cg.fb.CreateBlock()
	exit, _ := cg.fb.CreateBlock()
	br := cg.fb.Br(cond, body, exit, nil, nil)
	cg.ssa.RecordJump(condBlock, br, body)
	cg.ssa.RecordJump(condBlock, br, exit)
	cg.ssa.SealBlock(body)

	cg.loops.Push(header, exit)
	cg.fb.AppendBlock(body)
	cg.scopes.Push()
	bodyTerm, err := cg.lowerBlock(stmt.Body)
	cg.scopes.Pop()
	cg.loops.Pop()
	if err != nil {
		return err
	}
	if !bodyTerm {
		back := cg.fb.Jump(header, nil)
		cg.ssa.RecordJump(cg.fb.CurrentBlock(), back, header)
	}

	cg.ssa.SealBlock(header)
	cg.ssa.SealBlock(exit)
	cg.fb.AppendBlock(exit)
	return nil
}

func (cg *CodeGenBuilder) lowerExpr(expr ast.Expr) (ir.Value, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		key, ok := cg.scopes.Resolve(e.Name)
		if !ok {
			return 0, fmt.Errorf("codegen: undeclared variable %q", e.Name)
		}
		return cg.ssa.ReadVariable(key, cg.fb.CurrentBlock()), nil
	case *ast.IntLit:
		return cg.fb.Iconst(ir.I32, e.Value), nil
	case *ast.FloatLit:
		return cg.fb.Fconst(float32(e.Value)), nil
	case *ast.BoolLit:
		v := int64(0)
		if e.Value {
			v = 1
		}
		return cg.fb.Iconst(ir.U32, v), nil
	case *ast.UnaryExpr:
		return cg.lowerUnary(e)
	case *ast.BinaryExpr:
		return cg.lowerBinary(e)
	case *ast.CallExpr:
		return cg.lowerCall(e)
	default:
		return 0, fmt.Errorf("codegen: unsupported expression %T", expr)
	}
}

func (cg *CodeGenBuilder) lowerUnary(e *ast.UnaryExpr) (ir.Value, error) {
	val, err := cg.lowerExpr(e.Expr)
	if err != nil {
		return 0, err
	}
	if e.Op == "!" {
		zero := cg.fb.Iconst(ir.U32, 0)
		return cg.fb.Icmp(ir.IntEqual, val, zero), nil
	}
	zero := cg.fb.Iconst(ir.I32, 0)
	return cg.fb.Isub(ir.I32, zero, val), nil
}

var intCmpOps = map[ast.BinOp]ir.IntCC{
	ast.OpEq: ir.IntEqual, ast.OpNeq: ir.IntNotEqual,
	ast.OpLt: ir.IntSignedLessThan, ast.OpLe: ir.IntSignedLessThanOrEqual,
	ast.OpGt: ir.IntSignedGreaterThan, ast.OpGe: ir.IntSignedGreaterThanOrEqual,
}

func (cg *CodeGenBuilder) lowerBinary(e *ast.BinaryExpr) (ir.Value, error) {
	// && and || short-circuit through control flow rather than lowering
	// to an unconditional dataflow op.
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		return cg.lowerShortCircuit(e)
	}

	lhs, err := cg.lowerExpr(e.Lhs)
	if err != nil {
		return 0, err
	}
	rhs, err := cg.lowerExpr(e.Rhs)
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case ast.OpAdd:
		return cg.fb.Iadd(ir.I32, lhs, rhs), nil
	case ast.OpSub:
		return cg.fb.Isub(ir.I32, lhs, rhs), nil
	case ast.OpMul:
		return cg.fb.Imul(ir.I32, lhs, rhs), nil
	case ast.OpDiv:
		return cg.fb.Idiv(ir.I32, lhs, rhs), nil
	case ast.OpMod:
		return cg.fb.Irem(ir.I32, lhs, rhs), nil
	default:
		if cc, ok := intCmpOps[e.Op]; ok {
			return cg.fb.Icmp(cc, lhs, rhs), nil
		}
		return 0, fmt.Errorf("codegen: unsupported binary operator %q", e.Op)
	}
}

// lowerShortCircuit lowers && / || the way the rest of this package
// lowers conditionals: as control flow, so a false (resp. true) left
// operand skips evaluating the right one entirely, via the same
// if/else block shape lowerIf uses.
func (cg *CodeGenBuilder) lowerShortCircuit(e *ast.BinaryExpr) (ir.Value, error) {
	lhs, err := cg.lowerExpr(e.Lhs)
	if err != nil {
		return 0, err
	}
	lhsBlock := cg.fb.CurrentBlock()

	rhsBlock, _ := cg.fb.CreateBlock()
	skipBlock, _ := cg.fb.CreateBlock()
	mergeBlock, _ := cg.fb.CreateBlock()

	var br ir.Inst
	if e.Op == ast.OpAnd {
		br = cg.fb.Br(lhs, rhsBlock, skipBlock, nil, nil)
	} else {
		br = cg.fb.Br(lhs, skipBlock, rhsBlock, nil, nil)
	}
	cg.ssa.RecordJump(lhsBlock, br, rhsBlock)
	cg.ssa.RecordJump(lhsBlock, br, skipBlock)
	cg.ssa.SealBlock(rhsBlock)
	cg.ssa.SealBlock(skipBlock)

	const resultVar = "$shortcircuit"
	cg.ssa.DeclareVariable(resultVar, ir.U32)

	cg.fb.AppendBlock(rhsBlock)
	rhs, err := cg.lowerExpr(e.Rhs)
	if err != nil {
		return 0, err
	}
	cg.ssa.WriteVariable(resultVar, cg.fb.CurrentBlock(), rhs)
	j1 := cg.fb.Jump(mergeBlock, nil)
	cg.ssa.RecordJump(cg.fb.CurrentBlock(), j1, mergeBlock)

	cg.fb.AppendBlock(skipBlock)
	skipVal := int64(0)
	if e.Op == ast.OpOr {
		skipVal = 1
	}
	cg.ssa.WriteVariable(resultVar, skipBlock, cg.fb.Iconst(ir.U32, skipVal))
	j2 := cg.fb.Jump(mergeBlock, nil)
	cg.ssa.RecordJump(skipBlock, j2, mergeBlock)

	cg.ssa.SealBlock(mergeBlock)
	cg.fb.AppendBlock(mergeBlock)
	return cg.ssa.ReadVariable(resultVar, mergeBlock), nil
}

func (cg *CodeGenBuilder) lowerCall(e *ast.CallExpr) (ir.Value, error) {
	sig, ok := cg.sigs[e.Callee]
	if !ok {
		return 0, fmt.Errorf("codegen: call to undeclared function %q", e.Callee)
	}
	args := make([]ir.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := cg.lowerExpr(a)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	results := cg.fb.Call(e.Callee, sig.Returns, args)
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}
