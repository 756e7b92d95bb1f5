package symbols

import (
	"sync"

	"github.com/funvibe/tlcheck/internal/config"
	"github.com/funvibe/tlcheck/internal/typesystem"
)

const preludeOrigin = "prelude"

// Singleton prelude scope containing all built-in symbols
var (
	preludeScope *Scope
	preludeOnce  sync.Once
)

// GetPrelude returns the singleton prelude scope. It is shared by every
// module checked in this process and is never written after initialization.
func GetPrelude() *Scope {
	preludeOnce.Do(func() {
		preludeScope = newScope(ScopePrelude, nil)
		initBuiltins(preludeScope)
	})
	return preludeScope
}

func fn(params []typesystem.Param, ret typesystem.Type) typesystem.Func {
	return typesystem.Func{Params: params, Return: ret}
}

func p(name string, t typesystem.Type) typesystem.Param {
	return typesystem.Param{Name: name, Type: t}
}

func opt(name string, t typesystem.Type) typesystem.Param {
	return typesystem.Param{Name: name, Type: t, Optional: true}
}

func rest(name string, t typesystem.Type) typesystem.Param {
	return typesystem.Param{Name: name, Type: t, Rest: true}
}

func method(name string, f typesystem.Func) typesystem.Member {
	return typesystem.Member{Name: name, Type: f, Kind: typesystem.MethodMember}
}

func initBuiltins(s *Scope) {
	define := func(name string, t typesystem.Type) {
		kind := VariableSymbol
		if _, ok := t.(typesystem.Func); ok {
			kind = FunctionSymbol
		}
		s.store[name] = &Symbol{Name: name, Kind: kind, Type: t, Origin: preludeOrigin, Scope: ScopePrelude}
		s.order = append(s.order, name)
	}
	num, str, unk := typesystem.Number, typesystem.String, typesystem.Unknown
	integer, void := typesystem.Integer, typesystem.Void

	define(config.PrintFuncName, fn([]typesystem.Param{rest("args", unk)}, void))
	define(config.TypeFuncName, fn([]typesystem.Param{p("v", unk)}, str))
	define(config.ToStringFuncName, fn([]typesystem.Param{p("v", unk)}, str))
	define(config.ToNumberFuncName, fn([]typesystem.Param{p("v", unk), opt("base", integer)}, typesystem.Nullable(num)))
	define(config.ErrorFuncName, fn([]typesystem.Param{p("message", unk), opt("level", integer)}, typesystem.Never))
	define(config.AssertFuncName, typesystem.Func{
		TypeParams: []typesystem.TypeParam{{Name: "T"}},
		Params:     []typesystem.Param{p("v", typesystem.TVar{Name: "T"}), opt("message", str)},
		Return:     typesystem.TVar{Name: "T"},
	})
	define(config.PairsFuncName, fn([]typesystem.Param{p("t", typesystem.Table)}, unk))
	define(config.IPairsFuncName, fn([]typesystem.Param{p("t", typesystem.Table)}, unk))
	define(config.SelectFuncName, fn([]typesystem.Param{p("n", unk), rest("args", unk)}, unk))

	unary := fn([]typesystem.Param{p("x", num)}, num)
	variadic := fn([]typesystem.Param{p("x", num), rest("xs", num)}, num)
	define("math", typesystem.Object{Members: []typesystem.Member{
		method("floor", fn([]typesystem.Param{p("x", num)}, integer)),
		method("ceil", fn([]typesystem.Param{p("x", num)}, integer)),
		method("abs", unary),
		method("sqrt", unary),
		method("max", variadic),
		method("min", variadic),
		method("random", fn([]typesystem.Param{opt("m", integer), opt("n", integer)}, num)),
		{Name: "huge", Type: num, Readonly: true},
		{Name: "pi", Type: num, Readonly: true},
	}})
	define("string", typesystem.Object{Members: []typesystem.Member{
		method("len", fn([]typesystem.Param{p("s", str)}, integer)),
		method("sub", fn([]typesystem.Param{p("s", str), p("i", integer), opt("j", integer)}, str)),
		method("upper", fn([]typesystem.Param{p("s", str)}, str)),
		method("lower", fn([]typesystem.Param{p("s", str)}, str)),
		method("rep", fn([]typesystem.Param{p("s", str), p("n", integer)}, str)),
		method("format", fn([]typesystem.Param{p("fmt", str), rest("args", unk)}, str)),
	}})
	define("table", typesystem.Object{Members: []typesystem.Member{
		method("insert", fn([]typesystem.Param{p("t", typesystem.Table), p("v", unk)}, void)),
		method("remove", fn([]typesystem.Param{p("t", typesystem.Table), opt("pos", integer)}, unk)),
		method("concat", fn([]typesystem.Param{p("t", typesystem.Table), opt("sep", str)}, str)),
	}})
}
