package analyzer

import (
	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/narrowing"
	"github.com/funvibe/tlcheck/internal/symbols"
	ts "github.com/funvibe/tlcheck/internal/typesystem"
)

func (w *walker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		w.checkVariableDeclaration(s)
	case *ast.AssignmentStatement:
		w.checkAssignment(s)
	case *ast.ExpressionStatement:
		if t := w.inferExpr(s.Expression, nil); ts.IsNever(t) {
			w.narrow.MarkUnreachable()
		}
	case *ast.FunctionDeclaration:
		w.checkFunctionDeclaration(s)
	case *ast.ClassDeclaration:
		if w.symbolTable.IsModuleScope() {
			if w.decls[s.Name] == ast.Statement(s) {
				w.checkClassBodies(s)
			}
			return
		}
		w.declareNested(s)
	case *ast.TypeAliasDeclaration, *ast.InterfaceDeclaration, *ast.EnumDeclaration:
		if !w.symbolTable.IsModuleScope() {
			w.declareNested(s)
		}
	case *ast.DeclareFunction, *ast.DeclareConst, *ast.DeclareNamespace:
		if !w.symbolTable.IsModuleScope() {
			w.declareCallable(s)
		}
	case *ast.ExportStatement:
		if !w.symbolTable.IsModuleScope() {
			w.addError(diagnostics.ErrDuplicateExport, s.Span, "export is only allowed at module level")
			return
		}
		if s.Decl != nil {
			w.checkStatement(s.Decl)
		}
	case *ast.ImportStatement:
		if !w.symbolTable.IsModuleScope() {
			w.addError(diagnostics.ErrUndefinedSymbol, s.Span, "import is only allowed at module level")
		}
	case *ast.IfStatement:
		w.checkIf(s)
	case *ast.WhileStatement:
		w.checkWhile(s)
	case *ast.RepeatStatement:
		w.checkRepeat(s)
	case *ast.NumericForStatement:
		w.checkNumericFor(s)
	case *ast.GenericForStatement:
		w.checkGenericFor(s)
	case *ast.ReturnStatement:
		w.checkReturn(s)
	case *ast.TryStatement:
		w.checkTry(s)
	case *ast.ThrowStatement:
		w.checkThrow(s)
	case *ast.RethrowStatement:
		w.checkRethrow(s)
	case *ast.BreakStatement:
		if !w.inLoop {
			w.addError(diagnostics.ErrInvalidReturn, s.Span, "break outside a loop")
		} else {
			w.loopExits = append(w.loopExits, w.narrow)
		}
		w.narrow = w.narrow.Child()
		w.narrow.MarkUnreachable()
	case *ast.ContinueStatement:
		if !w.inLoop {
			w.addError(diagnostics.ErrInvalidReturn, s.Span, "continue outside a loop")
		}
		w.narrow = w.narrow.Child()
		w.narrow.MarkUnreachable()
	case *ast.Block:
		w.checkBlock(s, symbols.ScopeBlock)
	case *ast.BadStatement:
	}
}

// checkBlock checks a block in a new scope. Refinements of the block's own
// locals do not survive it.
func (w *walker) checkBlock(b *ast.Block, kind symbols.ScopeKind) {
	if b == nil {
		return
	}
	w.symbolTable.EnterScope(kind)
	for _, stmt := range b.Statements {
		w.checkStatement(stmt)
	}
	w.leaveScope()
}

func (w *walker) leaveScope() {
	for _, sym := range w.symbolTable.Current().Symbols() {
		w.narrow.Invalidate(sym.Name)
	}
	w.symbolTable.ExitScope()
}

func (w *walker) checkVariableDeclaration(s *ast.VariableDeclaration) {
	var declared ts.Type
	if s.Type != nil {
		declared = w.buildType(s.Type)
	}
	mutable := s.Kind == ast.DeclLocal

	var value ts.Type
	switch {
	case s.Value != nil:
		value = w.inferExpr(s.Value, declared)
		if declared != nil {
			w.expectAssignable(value, declared, s.Value.GetSpan())
		}
	case s.Kind == ast.DeclConst:
		w.addError(diagnostics.ErrTypeMismatch, s.Span, "const declaration needs a value")
	}

	t := declared
	if t == nil {
		switch {
		case value == nil:
			t = ts.Unknown
			if w.opts.NoImplicitUnknown {
				w.addWarning(diagnostics.ErrImplicitUnknown, s.Span, "variable implicitly has type unknown")
			}
		case s.Kind == ast.DeclConst:
			t = value
		default:
			t = widenDeclared(value)
		}
	}

	id, plain := s.Target.(*ast.IdentifierPattern)
	if !plain {
		w.bindPattern(s.Target, t, mutable)
		return
	}
	w.bindName(id.Name, t, id.Span, mutable)
	if declared != nil && value != nil {
		if refined, ok := w.narrowOnAssign(declared, value); ok {
			w.narrow.Refine(id.Name, refined)
		}
	}
}

// widenDeclared is the type a mutable binding takes from its initializer:
// literal types widen and a bare nil gives no information.
func widenDeclared(t ts.Type) ts.Type {
	if ts.IsNil(t) {
		return ts.Unknown
	}
	return ts.Widen(t)
}

// narrowOnAssign refines a union-typed reference to the members the assigned
// value can inhabit. It reports false when no refinement is useful.
func (w *walker) narrowOnAssign(declared, value ts.Type) (ts.Type, bool) {
	spread := w.narrower.Spread(declared)
	if len(ts.Members(spread)) < 2 || ts.IsUnknown(value) {
		return nil, false
	}
	values := ts.Members(value)
	refined := ts.Filter(spread, func(m ts.Type) bool {
		for _, v := range values {
			if w.assignable(v, m) {
				return true
			}
		}
		return false
	})
	if ts.IsNever(refined) {
		return nil, false
	}
	return refined, true
}

func (w *walker) checkAssignment(s *ast.AssignmentStatement) {
	target := w.assignTarget(s.Target)
	var value ts.Type
	if s.Op != "" {
		lhs := target
		if lhs == nil {
			lhs = ts.Unknown
		}
		rhs := w.inferExpr(s.Value, nil)
		value = w.arithmetic(s.Op, lhs, rhs, s.Span)
	} else {
		value = w.inferExpr(s.Value, target)
	}
	if target == nil {
		return
	}
	w.expectAssignable(value, target, s.Value.GetSpan())

	key := narrowing.Key(s.Target)
	if key == "" {
		return
	}
	if refined, ok := w.narrowOnAssign(target, value); ok {
		w.narrow.Refine(key, refined)
	} else {
		w.narrow.Invalidate(key)
	}
}

// assignTarget checks the left side of an assignment and returns its
// declared type, or nil when the target is invalid.
func (w *walker) assignTarget(e ast.Expression) ts.Type {
	switch t := e.(type) {
	case *ast.Identifier:
		sym, err := w.symbolTable.Lookup(t.Name)
		if err != nil {
			w.undefinedName(t.Name, t.Span)
			return nil
		}
		t.Annotation().Type = sym.Type
		switch {
		case sym.Kind != symbols.VariableSymbol && sym.Kind != symbols.ParameterSymbol:
			w.addError(diagnostics.ErrReadonlyAssignment, t.Span, "cannot assign to", sym.Kind.String(), t.Name)
		case !sym.Mutable:
			w.addError(diagnostics.ErrReadonlyAssignment, t.Span, "cannot assign to constant", t.Name)
		default:
			return sym.Type
		}
		return nil

	case *ast.MemberExpression:
		member, owner, ok := w.memberAccess(t, true)
		if !ok {
			return nil
		}
		if member.Readonly && !w.initializingOwnMember(t, owner) {
			w.addError(diagnostics.ErrReadonlyAssignment, t.Span, "cannot assign to readonly property", t.Name)
		}
		return memberType(member)

	case *ast.IndexExpression:
		return w.inferIndex(t, true)

	case *ast.ParenExpression:
		return w.assignTarget(t.Inner)
	}
	w.inferExpr(e, nil)
	w.addError(diagnostics.ErrTypeMismatch, e.GetSpan(), "invalid assignment target")
	return nil
}

// initializingOwnMember permits constructors to set readonly members of
// their own class through self.
func (w *walker) initializingOwnMember(t *ast.MemberExpression, owner string) bool {
	if w.fn == nil || !w.fn.ctor || w.class == nil || w.class.name != owner {
		return false
	}
	_, isSelf := t.Object.(*ast.SelfExpression)
	return isSelf
}

func (w *walker) checkIf(s *ast.IfStatement) {
	w.inferExpr(s.Condition, nil)
	thenCtx, elseCtx := w.narrower.NarrowFromCondition(s.Condition, w.narrow)

	var exits []*narrowing.Context
	w.narrow = thenCtx
	w.checkBlock(s.Then, symbols.ScopeBlock)
	exits = append(exits, w.narrow)

	for _, ei := range s.ElseIfs {
		w.narrow = elseCtx
		w.inferExpr(ei.Condition, nil)
		t, e := w.narrower.NarrowFromCondition(ei.Condition, elseCtx)
		w.narrow = t
		w.checkBlock(ei.Body, symbols.ScopeBlock)
		exits = append(exits, w.narrow)
		elseCtx = e
	}

	w.narrow = elseCtx
	if s.Else != nil {
		w.checkBlock(s.Else, symbols.ScopeBlock)
	}
	exits = append(exits, w.narrow)

	merged := exits[0]
	for _, ctx := range exits[1:] {
		merged = narrowing.Merge(merged, ctx)
	}
	w.narrow = merged
}

// enterLoop drops refinements of every reference the loop body assigns, so
// the first iteration is checked under what holds on every iteration.
func (w *walker) enterLoop(body *ast.Block) (restore func() []*narrowing.Context) {
	entry := w.narrow.Child()
	if body != nil {
		for _, k := range assignedKeys(body.Statements) {
			entry.Invalidate(k)
		}
	}
	w.narrow = entry
	inLoop, exits := w.inLoop, w.loopExits
	w.inLoop, w.loopExits = true, nil
	return func() []*narrowing.Context {
		breaks := w.loopExits
		w.inLoop, w.loopExits = inLoop, exits
		return breaks
	}
}

func mergeAll(first *narrowing.Context, rest []*narrowing.Context) *narrowing.Context {
	out := first
	for _, ctx := range rest {
		out = narrowing.Merge(out, ctx)
	}
	return out
}

func (w *walker) checkWhile(s *ast.WhileStatement) {
	restore := w.enterLoop(s.Body)
	w.inferExpr(s.Condition, nil)
	thenCtx, elseCtx := w.narrower.NarrowFromCondition(s.Condition, w.narrow)
	w.narrow = thenCtx
	w.checkBlock(s.Body, symbols.ScopeBlock)
	breaks := restore()
	w.narrow = mergeAll(elseCtx, breaks)
}

// checkRepeat checks the condition inside the body's scope, where Lua makes
// the body's locals visible to it.
func (w *walker) checkRepeat(s *ast.RepeatStatement) {
	restore := w.enterLoop(s.Body)
	w.symbolTable.EnterScope(symbols.ScopeBlock)
	if s.Body != nil {
		for _, stmt := range s.Body.Statements {
			w.checkStatement(stmt)
		}
	}
	reachable := !w.narrow.Unreachable()
	w.inferExpr(s.Condition, nil)
	exitCtx, _ := w.narrower.NarrowFromCondition(s.Condition, w.narrow)
	w.narrow = exitCtx
	w.leaveScope()
	breaks := restore()
	if !reachable {
		if len(breaks) > 0 {
			w.narrow = mergeAll(breaks[0], breaks[1:])
		}
		return
	}
	w.narrow = mergeAll(exitCtx, breaks)
}

func (w *walker) checkNumericFor(s *ast.NumericForStatement) {
	integer := true
	for _, e := range []ast.Expression{s.Start, s.Limit, s.Step} {
		if e == nil {
			continue
		}
		t := w.inferExpr(e, ts.Number)
		if !w.assignable(t, ts.Number) {
			w.addError(diagnostics.ErrTypeMismatch, e.GetSpan(), "'for' bound must be a number, got", quote(t))
		}
		if e != s.Limit && !isInteger(t) && !ts.IsUnknown(t) {
			integer = false
		}
	}
	varType := ts.Type(ts.Number)
	if integer {
		varType = ts.Integer
	}
	entry := w.narrow
	restore := w.enterLoop(s.Body)
	w.symbolTable.EnterScope(symbols.ScopeBlock)
	w.bindName(s.Var, varType, s.Span, true)
	w.checkBlock(s.Body, symbols.ScopeBlock)
	w.leaveScope()
	breaks := restore()
	w.narrow = mergeAll(w.loopEntry(entry, s.Body), breaks)
}

// loopEntry is the context after a loop that may run zero times.
func (w *walker) loopEntry(entry *narrowing.Context, body *ast.Block) *narrowing.Context {
	out := entry.Child()
	if body != nil {
		for _, k := range assignedKeys(body.Statements) {
			out.Invalidate(k)
		}
	}
	return out
}

func (w *walker) checkGenericFor(s *ast.GenericForStatement) {
	iter := w.inferExpr(s.Iterator, nil)
	vars := w.iterationTypes(s.Iterator, iter, len(s.Vars))

	entry := w.narrow
	restore := w.enterLoop(s.Body)
	w.symbolTable.EnterScope(symbols.ScopeBlock)
	for i, name := range s.Vars {
		w.bindName(name, vars[i], s.Span, true)
	}
	w.checkBlock(s.Body, symbols.ScopeBlock)
	w.leaveScope()
	breaks := restore()
	w.narrow = mergeAll(w.loopEntry(entry, s.Body), breaks)
}

func (w *walker) checkReturn(s *ast.ReturnStatement) {
	defer func() {
		w.narrow = w.narrow.Child()
		w.narrow.MarkUnreachable()
	}()
	if w.fn == nil {
		for _, v := range s.Values {
			w.inferExpr(v, nil)
		}
		if !w.symbolTable.IsModuleScope() || len(s.Values) > 0 {
			w.addError(diagnostics.ErrInvalidReturn, s.Span, "return outside a function")
		}
		return
	}
	if w.fn.ctor && len(s.Values) > 0 {
		w.addError(diagnostics.ErrInvalidReturn, s.Span, "a constructor cannot return a value")
		return
	}

	declared := w.fn.declared
	types := make([]ts.Type, len(s.Values))
	for i, v := range s.Values {
		types[i] = w.inferExpr(v, expectedReturn(declared, i, len(s.Values)))
	}
	got := tupleOf(types)
	if declared == nil {
		w.fn.returns = append(w.fn.returns, got)
		return
	}
	if len(s.Values) == 0 {
		if !isVoid(declared) && !w.assignable(ts.Nil, declared) {
			w.addError(diagnostics.ErrTypeMismatch, s.Span, "function must return a value of type", quote(declared))
		}
		return
	}
	span := s.Values[0].GetSpan()
	if len(s.Values) > 1 {
		span = span.Cover(s.Values[len(s.Values)-1].GetSpan())
	}
	w.expectAssignable(got, declared, span)
}

// expectedReturn is the contextual type of the i-th of n returned values.
func expectedReturn(declared ts.Type, i, n int) ts.Type {
	if declared == nil {
		return nil
	}
	if n == 1 {
		return declared
	}
	if t, ok := declared.(ts.Tuple); ok && i < len(t.Elems) {
		return t.Elems[i]
	}
	return nil
}

func (w *walker) checkFunctionDeclaration(s *ast.FunctionDeclaration) {
	fe := &ast.FunctionExpression{
		Span:       s.Span,
		TypeParams: s.TypeParams,
		Params:     s.Params,
		ReturnType: s.ReturnType,
		Body:       s.Body,
	}
	var sig ts.Func
	if w.symbolTable.IsModuleScope() {
		if sym, ok := w.symbolTable.Find(s.Name); ok && sym.Kind == symbols.FunctionSymbol {
			sig, _ = sym.Type.(ts.Func)
		}
	} else {
		sig = w.buildSignature(s.TypeParams, s.Params, s.ReturnType, nil)
		if sig.Return == nil {
			sig.Return = ts.Unknown
		}
		w.narrow.Invalidate(s.Name)
		w.declare(symbols.Symbol{Name: s.Name, Kind: symbols.FunctionSymbol, Type: sig, Span: s.NameSpan})
	}
	got := w.checkFunctionBody(fe, sig, nil, false, s.ReturnType == nil)
	if s.ReturnType == nil {
		_ = w.symbolTable.Update(s.Name, got)
	}
}
