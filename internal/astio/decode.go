// Package astio decodes the parser's YAML tree dumps into ast nodes.
//
// Every node is a mapping with a kind field, per-kind fields and an optional
// span: [line, col, endLine, endCol]. Node kinds the decoder does not know
// become Bad placeholders, which the checker treats as already reported.
package astio

import (
	"fmt"
	"os"
	"strconv"

	"github.com/funvibe/tlcheck/internal/ast"
	"github.com/funvibe/tlcheck/internal/token"
	"gopkg.in/yaml.v3"
)

// DecodeFile reads and decodes the dump at path.
func DecodeFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree dump %s: %w", path, err)
	}
	return Decode(data, path)
}

// Decode decodes a dump. file is stamped on every span.
func Decode(data []byte, file string) (*ast.Program, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	root := wrap(&doc)
	if root.y == nil || root.y.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: tree dump must be a mapping", file)
	}
	if !root.has("statements") {
		return nil, fmt.Errorf("%s: tree dump has no statements", file)
	}
	d := &decoder{file: file}
	prog := &ast.Program{File: file, Module: root.str("module")}
	for _, s := range root.list("statements") {
		prog.Statements = append(prog.Statements, d.stmt(s))
	}
	return prog, nil
}

type decoder struct {
	file string
}

func (d *decoder) span(n node) token.Span {
	if v := n.ints("span"); len(v) == 4 {
		s := token.NewSpan(v[0], v[1], v[2], v[3])
		s.File = d.file
		return s
	}
	if n.y == nil {
		return token.Span{File: d.file}
	}
	s := token.At(n.y.Line, n.y.Column)
	s.File = d.file
	return s
}

func (d *decoder) block(n node, key string) *ast.Block {
	c, ok := n.fields[key]
	if !ok {
		return nil
	}
	b := &ast.Block{Span: d.span(wrap(c))}
	if c.Kind == yaml.SequenceNode {
		for _, s := range n.list(key) {
			b.Statements = append(b.Statements, d.stmt(s))
		}
		if len(b.Statements) > 0 {
			b.Span = b.Statements[0].GetSpan().Cover(b.Statements[len(b.Statements)-1].GetSpan())
		}
		return b
	}
	bn := wrap(c)
	b.Span = d.span(bn)
	for _, s := range bn.list("body") {
		b.Statements = append(b.Statements, d.stmt(s))
	}
	return b
}

func (d *decoder) stmt(n node) ast.Statement {
	sp := d.span(n)
	switch n.kind() {
	case "local", "const":
		vd := &ast.VariableDeclaration{Span: sp, Value: d.optExpr(n, "value"), Type: d.optType(n, "type")}
		if n.kind() == "const" {
			vd.Kind = ast.DeclConst
		}
		if p, ok := n.child("target"); ok {
			vd.Target = d.pattern(p)
		} else {
			vd.Target = &ast.IdentifierPattern{Span: sp, Name: n.str("name")}
		}
		return vd
	case "assign":
		return &ast.AssignmentStatement{
			Span:   sp,
			Target: d.optExpr(n, "target"),
			Op:     ast.BinaryOperator(n.str("op")),
			Value:  d.optExpr(n, "value"),
		}
	case "expr":
		return &ast.ExpressionStatement{Span: sp, Expression: d.optExpr(n, "expr")}
	case "function":
		fd := &ast.FunctionDeclaration{
			Span:       sp,
			Name:       n.str("name"),
			NameSpan:   sp,
			Local:      n.boolean("local"),
			TypeParams: d.typeParams(n),
			Params:     d.params(n),
			ReturnType: d.optType(n, "returns"),
			Body:       d.block(n, "body"),
		}
		if fd.Body == nil {
			fd.Body = &ast.Block{Span: sp}
		}
		return fd
	case "type", "declare_type":
		return &ast.TypeAliasDeclaration{Span: sp, Name: n.str("name"), TypeParams: d.typeParams(n), Type: d.optType(n, "type")}
	case "interface", "declare_interface":
		id := &ast.InterfaceDeclaration{Span: sp, Name: n.str("name"), TypeParams: d.typeParams(n), Body: d.objectType(n)}
		for _, e := range n.list("extends") {
			if nt, ok := d.typ(e).(*ast.NamedType); ok {
				id.Extends = append(id.Extends, nt)
			}
		}
		return id
	case "enum":
		ed := &ast.EnumDeclaration{Span: sp, Name: n.str("name")}
		for _, m := range n.list("members") {
			em := &ast.EnumMember{Span: d.span(m), Name: m.str("name")}
			if m.scalar() {
				em.Name = m.y.Value
			}
			em.Value = d.optExpr(m, "value")
			ed.Members = append(ed.Members, em)
		}
		return ed
	case "class":
		return d.class(n, sp)
	case "declare_function":
		return &ast.DeclareFunction{
			Span:       sp,
			Name:       n.str("name"),
			TypeParams: d.typeParams(n),
			Params:     d.params(n),
			ReturnType: d.optType(n, "returns"),
		}
	case "declare_const":
		return &ast.DeclareConst{Span: sp, Name: n.str("name"), Type: d.optType(n, "type")}
	case "declare_namespace":
		dn := &ast.DeclareNamespace{Span: sp, Name: n.str("name")}
		for _, m := range n.list("members") {
			dn.Members = append(dn.Members, d.stmt(m))
		}
		return dn
	case "import":
		is := &ast.ImportStatement{
			Span:      sp,
			Module:    n.str("module"),
			Namespace: n.str("namespace"),
			TypeOnly:  n.boolean("type_only"),
		}
		for _, s := range n.list("names") {
			spec := &ast.ImportSpec{Span: d.span(s), Name: s.str("name"), Alias: s.str("as")}
			if s.scalar() {
				spec.Name = s.y.Value
			}
			is.Names = append(is.Names, spec)
		}
		return is
	case "export":
		es := &ast.ExportStatement{Span: sp}
		if decl, ok := n.child("decl"); ok {
			es.Decl = d.stmt(decl)
		}
		for _, s := range n.list("names") {
			spec := &ast.ExportSpec{Span: d.span(s), Name: s.str("name"), Alias: s.str("as")}
			if s.scalar() {
				spec.Name = s.y.Value
			}
			es.Names = append(es.Names, spec)
		}
		return es
	case "if":
		is := &ast.IfStatement{Span: sp, Condition: d.optExpr(n, "cond"), Then: d.block(n, "then"), Else: d.block(n, "else")}
		if is.Then == nil {
			is.Then = &ast.Block{Span: sp}
		}
		for _, e := range n.list("elseifs") {
			ei := &ast.ElseIf{Span: d.span(e), Condition: d.optExpr(e, "cond"), Body: d.block(e, "body")}
			if ei.Body == nil {
				ei.Body = &ast.Block{Span: ei.Span}
			}
			is.ElseIfs = append(is.ElseIfs, ei)
		}
		return is
	case "while":
		return &ast.WhileStatement{Span: sp, Condition: d.optExpr(n, "cond"), Body: d.bodyOrEmpty(n, sp)}
	case "repeat":
		return &ast.RepeatStatement{Span: sp, Body: d.bodyOrEmpty(n, sp), Condition: d.optExpr(n, "cond")}
	case "for_num":
		return &ast.NumericForStatement{
			Span:  sp,
			Var:   n.str("var"),
			Start: d.optExpr(n, "start"),
			Limit: d.optExpr(n, "limit"),
			Step:  d.nilableExpr(n, "step"),
			Body:  d.bodyOrEmpty(n, sp),
		}
	case "for_in":
		return &ast.GenericForStatement{Span: sp, Vars: n.strs("vars"), Iterator: d.optExpr(n, "iter"), Body: d.bodyOrEmpty(n, sp)}
	case "return":
		rs := &ast.ReturnStatement{Span: sp}
		for _, v := range n.list("values") {
			rs.Values = append(rs.Values, d.expr(v))
		}
		return rs
	case "try":
		t := &ast.TryStatement{Span: sp, Body: d.bodyOrEmpty(n, sp), Finally: d.block(n, "finally")}
		for _, c := range n.list("catches") {
			cc := &ast.CatchClause{Span: d.span(c), Var: c.str("var"), Types: d.types(c, "types"), Body: d.bodyOrEmpty(c, d.span(c))}
			t.Catches = append(t.Catches, cc)
		}
		return t
	case "throw":
		return &ast.ThrowStatement{Span: sp, Value: d.optExpr(n, "value")}
	case "rethrow":
		return &ast.RethrowStatement{Span: sp}
	case "break":
		return &ast.BreakStatement{Span: sp}
	case "continue":
		return &ast.ContinueStatement{Span: sp}
	case "block", "do":
		return d.bodyOrEmpty(n, sp)
	}
	return &ast.BadStatement{Span: sp}
}

func (d *decoder) bodyOrEmpty(n node, sp token.Span) *ast.Block {
	if b := d.block(n, "body"); b != nil {
		return b
	}
	return &ast.Block{Span: sp}
}

func (d *decoder) class(n node, sp token.Span) *ast.ClassDeclaration {
	cd := &ast.ClassDeclaration{
		Span:       sp,
		Name:       n.str("name"),
		NameSpan:   sp,
		TypeParams: d.typeParams(n),
		Abstract:   n.boolean("abstract"),
		Final:      n.boolean("final"),
		Decorators: d.exprs(n, "decorators"),
	}
	if e, ok := n.child("extends"); ok {
		if nt, ok := d.typ(e).(*ast.NamedType); ok {
			cd.Extends = nt
		}
	}
	for _, i := range n.list("implements") {
		if nt, ok := d.typ(i).(*ast.NamedType); ok {
			cd.Implements = append(cd.Implements, nt)
		}
	}
	for _, m := range n.list("members") {
		cd.Members = append(cd.Members, d.classMember(m))
	}
	return cd
}

var memberKinds = map[string]ast.ClassMemberKind{
	"property":    ast.PropertyMember,
	"method":      ast.MethodMember,
	"constructor": ast.ConstructorMember,
	"getter":      ast.GetterMember,
	"setter":      ast.SetterMember,
}

var accessModifiers = map[string]ast.AccessModifier{
	"public":    ast.Public,
	"private":   ast.Private,
	"protected": ast.Protected,
}

func (d *decoder) classMember(n node) *ast.ClassMember {
	sp := d.span(n)
	cm := &ast.ClassMember{
		Span:     sp,
		Kind:     memberKinds[n.kind()],
		Name:     n.str("name"),
		Access:   accessModifiers[n.str("access")],
		Static:   n.boolean("static"),
		Readonly: n.boolean("readonly"),
		Abstract: n.boolean("abstract"),
		Final:    n.boolean("final"),
		Override: n.boolean("override"),
		Optional: n.boolean("optional"),
		Type:     d.optType(n, "type"),
		Init:     d.nilableExpr(n, "init"),

		Decorators: d.exprs(n, "decorators"),
	}
	if cm.Kind == ast.ConstructorMember && cm.Name == "" {
		cm.Name = "constructor"
	}
	if cm.Kind != ast.PropertyMember {
		fe := &ast.FunctionExpression{
			Span:       sp,
			TypeParams: d.typeParams(n),
			Params:     d.params(n),
			ReturnType: d.optType(n, "returns"),
			Body:       d.block(n, "body"),
		}
		if fe.Body == nil && !cm.Abstract {
			fe.Body = &ast.Block{Span: sp}
		}
		cm.Function = fe
	}
	return cm
}

func (d *decoder) typeParams(n node) []*ast.TypeParameter {
	var out []*ast.TypeParameter
	for _, p := range n.list("type_params") {
		tp := &ast.TypeParameter{Span: d.span(p), Name: p.str("name")}
		if p.scalar() {
			tp.Name = p.y.Value
		}
		tp.Constraint = d.optType(p, "constraint")
		tp.Default = d.optType(p, "default")
		out = append(out, tp)
	}
	return out
}

func (d *decoder) params(n node) []*ast.Parameter {
	var out []*ast.Parameter
	for _, p := range n.list("params") {
		param := &ast.Parameter{
			Span:     d.span(p),
			Name:     p.str("name"),
			Type:     d.optType(p, "type"),
			Optional: p.boolean("optional"),
			Default:  d.nilableExpr(p, "default"),
			Rest:     p.boolean("rest"),
		}
		if p.scalar() {
			param.Name = p.y.Value
		}
		out = append(out, param)
	}
	return out
}

// optExpr decodes a required expression; a missing one is a placeholder.
func (d *decoder) optExpr(n node, key string) ast.Expression {
	c, ok := n.child(key)
	if !ok {
		return &ast.BadExpression{Span: d.span(n)}
	}
	return d.expr(c)
}

// nilableExpr decodes an optional expression.
func (d *decoder) nilableExpr(n node, key string) ast.Expression {
	c, ok := n.child(key)
	if !ok {
		return nil
	}
	return d.expr(c)
}

func (d *decoder) optType(n node, key string) ast.Type {
	c, ok := n.child(key)
	if !ok {
		return nil
	}
	return d.typ(c)
}

func (d *decoder) literalValue(n node, sp token.Span) ast.Expression {
	v, ok := n.fields["value"]
	if !ok {
		return &ast.BadExpression{Span: sp}
	}
	switch v.Tag {
	case "!!null":
		return &ast.NilLiteral{Span: sp}
	case "!!bool":
		b, _ := strconv.ParseBool(v.Value)
		return &ast.BooleanLiteral{Span: sp, Value: b}
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return &ast.BadExpression{Span: sp}
		}
		return &ast.NumberLiteral{Span: sp, Value: f, Integer: v.Tag == "!!int" || n.boolean("integer")}
	}
	return &ast.StringLiteral{Span: sp, Value: v.Value}
}
