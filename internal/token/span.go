package token

import "fmt"

// Position is a 1-based line/column location in a source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) IsValid() bool { return p.Line > 0 }

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Span is the source range covered by a syntax node.
type Span struct {
	File  string
	Start Position
	End   Position
}

// NewSpan builds a span inside a single file.
func NewSpan(line, col, endLine, endCol int) Span {
	return Span{
		Start: Position{Line: line, Column: col},
		End:   Position{Line: endLine, Column: endCol},
	}
}

// At builds a zero-width span at line:col.
func At(line, col int) Span {
	return NewSpan(line, col, line, col)
}

func (s Span) IsValid() bool { return s.Start.IsValid() }

// Cover returns the smallest span containing both s and o.
func (s Span) Cover(o Span) Span {
	if !s.IsValid() {
		return o
	}
	if !o.IsValid() {
		return s
	}
	out := s
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if out.End.Before(o.End) {
		out.End = o.End
	}
	return out
}

func (s Span) String() string {
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Start.Line, s.Start.Column)
	}
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}
