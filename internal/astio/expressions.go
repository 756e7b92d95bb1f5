package astio

import (
	"strconv"

	"github.com/funvibe/tlcheck/internal/ast"
)

var fieldKinds = map[string]ast.FieldKind{
	"named":    ast.FieldNamed,
	"computed": ast.FieldComputed,
	"spread":   ast.FieldSpread,
}

func (d *decoder) exprs(n node, key string) []ast.Expression {
	var out []ast.Expression
	for _, c := range n.list(key) {
		out = append(out, d.expr(c))
	}
	return out
}

func (d *decoder) types(n node, key string) []ast.Type {
	var out []ast.Type
	for _, c := range n.list(key) {
		out = append(out, d.typ(c))
	}
	return out
}

func (d *decoder) expr(n node) ast.Expression {
	sp := d.span(n)
	if n.scalar() {
		return &ast.Identifier{Span: sp, Name: n.y.Value}
	}
	switch n.kind() {
	case "ident":
		return &ast.Identifier{Span: sp, Name: n.str("name")}
	case "nil":
		return &ast.NilLiteral{Span: sp}
	case "bool":
		return &ast.BooleanLiteral{Span: sp, Value: n.boolean("value")}
	case "number":
		v := n.fields["value"]
		if v == nil {
			return &ast.BadExpression{Span: sp}
		}
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return &ast.BadExpression{Span: sp}
		}
		return &ast.NumberLiteral{Span: sp, Value: f, Integer: v.Tag == "!!int" || n.boolean("integer")}
	case "string":
		return &ast.StringLiteral{Span: sp, Value: n.str("value")}
	case "literal":
		return d.literalValue(n, sp)
	case "template":
		ts := &ast.TemplateString{Span: sp}
		for _, p := range n.list("parts") {
			if p.scalar() {
				ts.Parts = append(ts.Parts, &ast.StringLiteral{Span: d.span(p), Value: p.y.Value})
				continue
			}
			ts.Parts = append(ts.Parts, d.expr(p))
		}
		return ts
	case "vararg":
		return &ast.VarargExpression{Span: sp}
	case "binary":
		return &ast.BinaryExpression{
			Span:     sp,
			Operator: ast.BinaryOperator(n.str("op")),
			Left:     d.optExpr(n, "left"),
			Right:    d.optExpr(n, "right"),
		}
	case "unary":
		return &ast.UnaryExpression{Span: sp, Operator: ast.UnaryOperator(n.str("op")), Operand: d.optExpr(n, "operand")}
	case "call":
		return &ast.CallExpression{
			Span:     sp,
			Callee:   d.optExpr(n, "callee"),
			TypeArgs: d.types(n, "type_args"),
			Args:     d.exprs(n, "args"),
			Optional: n.boolean("optional"),
		}
	case "method_call":
		return &ast.MethodCallExpression{
			Span:     sp,
			Receiver: d.optExpr(n, "receiver"),
			Method:   n.str("method"),
			TypeArgs: d.types(n, "type_args"),
			Args:     d.exprs(n, "args"),
		}
	case "member":
		return &ast.MemberExpression{Span: sp, Object: d.optExpr(n, "object"), Name: n.str("name"), Optional: n.boolean("optional")}
	case "index":
		return &ast.IndexExpression{Span: sp, Object: d.optExpr(n, "object"), Index: d.optExpr(n, "index"), Optional: n.boolean("optional")}
	case "object":
		oe := &ast.ObjectExpression{Span: sp}
		for _, f := range n.list("fields") {
			kind := ast.FieldNamed
			if k, ok := fieldKinds[f.kind()]; ok {
				kind = k
			}
			oe.Fields = append(oe.Fields, &ast.ObjectField{
				Span:  d.span(f),
				Kind:  kind,
				Name:  f.str("name"),
				Key:   d.nilableExpr(f, "key"),
				Value: d.optExpr(f, "value"),
			})
		}
		return oe
	case "array":
		return &ast.ArrayExpression{Span: sp, Elements: d.exprs(n, "elements")}
	case "spread":
		return &ast.SpreadExpression{Span: sp, Value: d.optExpr(n, "value")}
	case "function", "arrow":
		return &ast.FunctionExpression{
			Span:       sp,
			TypeParams: d.typeParams(n),
			Params:     d.params(n),
			ReturnType: d.optType(n, "returns"),
			Body:       d.block(n, "body"),
			Result:     d.nilableExpr(n, "result"),
		}
	case "try":
		return &ast.TryExpression{
			Span:     sp,
			Value:    d.optExpr(n, "value"),
			CatchVar: n.str("var"),
			Catch:    d.optExpr(n, "catch"),
		}
	case "error_chain":
		return &ast.ErrorChainExpression{Span: sp, Left: d.optExpr(n, "left"), Right: d.optExpr(n, "right")}
	case "conditional":
		return &ast.ConditionalExpression{
			Span:      sp,
			Condition: d.optExpr(n, "cond"),
			Then:      d.optExpr(n, "then"),
			Else:      d.optExpr(n, "else"),
		}
	case "match":
		me := &ast.MatchExpression{Span: sp, Subject: d.optExpr(n, "subject")}
		for _, a := range n.list("arms") {
			arm := &ast.MatchArm{Span: d.span(a), Guard: d.nilableExpr(a, "guard"), Body: d.optExpr(a, "body")}
			if p, ok := a.child("pattern"); ok {
				arm.Pattern = d.pattern(p)
			} else {
				arm.Pattern = &ast.WildcardPattern{Span: arm.Span}
			}
			me.Arms = append(me.Arms, arm)
		}
		return me
	case "paren":
		return &ast.ParenExpression{Span: sp, Inner: d.optExpr(n, "inner")}
	case "self":
		return &ast.SelfExpression{Span: sp}
	case "super":
		return &ast.SuperExpression{Span: sp}
	case "as":
		return &ast.TypeAssertion{Span: sp, Expression: d.optExpr(n, "expr"), Type: d.optType(n, "type")}
	case "new":
		return &ast.NewExpression{
			Span:      sp,
			Class:     n.str("class"),
			ClassSpan: sp,
			TypeArgs:  d.types(n, "type_args"),
			Args:      d.exprs(n, "args"),
		}
	}
	return &ast.BadExpression{Span: sp}
}

func (d *decoder) objectType(n node) *ast.ObjectType {
	ot := &ast.ObjectType{Span: d.span(n)}
	for _, m := range n.list("members") {
		ot.Members = append(ot.Members, &ast.ObjectTypeMember{
			Span:     d.span(m),
			Name:     m.str("name"),
			Type:     d.optType(m, "type"),
			Optional: m.boolean("optional"),
			Readonly: m.boolean("readonly"),
			Method:   m.boolean("method"),
		})
	}
	if idx, ok := n.child("index"); ok {
		ot.Index = &ast.IndexSignatureType{Span: d.span(idx), Key: d.optType(idx, "key"), Value: d.optType(idx, "value")}
	}
	return ot
}

func (d *decoder) typ(n node) ast.Type {
	sp := d.span(n)
	if n.scalar() {
		return &ast.NamedType{Span: sp, Name: n.y.Value}
	}
	switch n.kind() {
	case "named":
		return &ast.NamedType{Span: sp, Name: n.str("name"), Args: d.types(n, "args")}
	case "literal":
		lt := &ast.LiteralType{Span: sp}
		v := n.fields["value"]
		if v == nil {
			return &ast.BadType{Span: sp}
		}
		switch v.Tag {
		case "!!bool":
			lt.Kind = ast.LiteralBoolean
			lt.Bool, _ = strconv.ParseBool(v.Value)
		case "!!int", "!!float":
			lt.Kind = ast.LiteralNumber
			lt.Number, _ = strconv.ParseFloat(v.Value, 64)
		default:
			lt.Kind = ast.LiteralString
			lt.String = v.Value
		}
		return lt
	case "array":
		if e, ok := n.child("elem"); ok {
			return &ast.ArrayType{Span: sp, Elem: d.typ(e)}
		}
	case "tuple":
		return &ast.TupleType{Span: sp, Elems: d.types(n, "elems")}
	case "object":
		return d.objectType(n)
	case "function":
		return &ast.FunctionType{Span: sp, TypeParams: d.typeParams(n), Params: d.params(n), ReturnType: d.optType(n, "returns")}
	case "union":
		return &ast.UnionType{Span: sp, Types: d.types(n, "types")}
	case "intersection":
		return &ast.IntersectionType{Span: sp, Types: d.types(n, "types")}
	case "nullable":
		if i, ok := n.child("inner"); ok {
			return &ast.NullableType{Span: sp, Inner: d.typ(i)}
		}
	case "predicate":
		return &ast.TypePredicate{Span: sp, Param: n.str("param"), Type: d.optType(n, "type")}
	}
	return &ast.BadType{Span: sp}
}

func (d *decoder) pattern(n node) ast.Pattern {
	sp := d.span(n)
	if n.scalar() {
		if n.y.Value == "_" {
			return &ast.WildcardPattern{Span: sp}
		}
		return &ast.IdentifierPattern{Span: sp, Name: n.y.Value}
	}
	switch n.kind() {
	case "ident":
		return &ast.IdentifierPattern{Span: sp, Name: n.str("name")}
	case "literal":
		if v, ok := n.child("value"); ok && !v.scalar() {
			return &ast.LiteralPattern{Span: sp, Value: d.expr(v)}
		}
		return &ast.LiteralPattern{Span: sp, Value: d.literalValue(n, sp)}
	case "type":
		return &ast.TypePattern{Span: sp, Name: n.str("name"), Type: d.optType(n, "type")}
	case "array":
		ap := &ast.ArrayPattern{Span: sp, Rest: n.str("rest")}
		for _, e := range n.list("elements") {
			ap.Elements = append(ap.Elements, d.pattern(e))
		}
		return ap
	case "object":
		op := &ast.ObjectPattern{Span: sp, Rest: n.str("rest")}
		for _, f := range n.list("fields") {
			field := &ast.ObjectPatternField{Span: d.span(f), Key: f.str("key")}
			if f.scalar() {
				field.Key = f.y.Value
			} else if v, ok := f.child("value"); ok {
				field.Value = d.pattern(v)
			}
			op.Fields = append(op.Fields, field)
		}
		return op
	case "wildcard":
		return &ast.WildcardPattern{Span: sp}
	}
	return &ast.BadPattern{Span: sp}
}
