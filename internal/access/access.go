// Package access maintains the class hierarchy as an explicit parent/children
// graph and decides whether member accesses are permitted.
package access

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/tlcheck/internal/ast"
)

var (
	ErrDuplicateClass = errors.New("duplicate class")
	ErrUnknownClass   = errors.New("unknown class")
	ErrCycle          = errors.New("class hierarchy cycle")
)

// Member is the visibility record of one class member.
type Member struct {
	Name     string
	Access   ast.AccessModifier
	Static   bool
	Final    bool
	Abstract bool
	Method   bool
}

// Class is the access-control view of a class declaration.
type Class struct {
	Name     string
	Parent   string
	Final    bool
	Abstract bool

	members map[string]*Member
	order   []string
}

// Members returns the members declared directly on the class, in
// declaration order.
func (c *Class) Members() []*Member {
	out := make([]*Member, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.members[name])
	}
	return out
}

// Member returns a member declared directly on the class.
func (c *Class) Member(name string) (*Member, bool) {
	m, ok := c.members[name]
	return m, ok
}

// Table is the class graph of one module.
type Table struct {
	classes  map[string]*Class
	children map[string][]string
}

func NewTable() *Table {
	return &Table{
		classes:  make(map[string]*Class),
		children: make(map[string][]string),
	}
}

// RegisterClass adds a class to the graph. The parent need not be registered
// yet, but a parent link that would close a cycle is rejected and dropped.
func (t *Table) RegisterClass(name, parent string, final, abstract bool) (*Class, error) {
	if _, ok := t.classes[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateClass, name)
	}
	c := &Class{Name: name, Final: final, Abstract: abstract, members: make(map[string]*Member)}
	t.classes[name] = c
	if parent == "" {
		return c, nil
	}
	if err := t.SetParent(name, parent); err != nil {
		return c, err
	}
	return c, nil
}

// SetParent links name under parent, rejecting cycles.
func (t *Table) SetParent(name, parent string) error {
	c, ok := t.classes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	path := []string{name, parent}
	for cur := parent; cur != ""; {
		if cur == name {
			return &CycleError{Path: path}
		}
		next, ok := t.classes[cur]
		if !ok {
			break
		}
		cur = next.Parent
		if cur != "" {
			path = append(path, cur)
		}
	}
	if c.Parent != "" {
		t.unlink(name, c.Parent)
	}
	c.Parent = parent
	t.children[parent] = append(t.children[parent], name)
	return nil
}

func (t *Table) unlink(name, parent string) {
	kids := t.children[parent]
	for i, k := range kids {
		if k == name {
			t.children[parent] = append(kids[:i:i], kids[i+1:]...)
			return
		}
	}
}

// Class returns a registered class.
func (t *Table) Class(name string) (*Class, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// AddMember records a member declared directly on class.
func (t *Table) AddMember(class string, m Member) error {
	c, ok := t.classes[class]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if _, dup := c.members[m.Name]; !dup {
		c.order = append(c.order, m.Name)
	}
	c.members[m.Name] = &m
	return nil
}

// MarkFinal marks a class as final.
func (t *Table) MarkFinal(class string) {
	if c, ok := t.classes[class]; ok {
		c.Final = true
	}
}

// MarkFinalMethod marks a method of class as final.
func (t *Table) MarkFinalMethod(class, method string) {
	if c, ok := t.classes[class]; ok {
		if m, ok := c.members[method]; ok {
			m.Final = true
		}
	}
}

// Ancestors lists the parent chain of class, nearest first. Unregistered
// parents end the chain after being listed.
func (t *Table) Ancestors(class string) []string {
	var out []string
	seen := map[string]bool{class: true}
	c, ok := t.classes[class]
	for ok && c.Parent != "" && !seen[c.Parent] {
		out = append(out, c.Parent)
		seen[c.Parent] = true
		c, ok = t.classes[c.Parent]
	}
	return out
}

// Children returns the direct subclasses of class, sorted.
func (t *Table) Children(class string) []string {
	out := append([]string(nil), t.children[class]...)
	sort.Strings(out)
	return out
}

// Descendants returns every transitive subclass of class, sorted.
func (t *Table) Descendants(class string) []string {
	var out []string
	seen := map[string]bool{class: true}
	queue := []string{class}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, k := range t.children[cur] {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
				queue = append(queue, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

// IsSubclass reports whether child is ancestor or extends it through the
// full parent chain.
func (t *Table) IsSubclass(child, ancestor string) bool {
	if child == ancestor {
		return true
	}
	for _, a := range t.Ancestors(child) {
		if a == ancestor {
			return true
		}
	}
	return false
}

// MemberOwner finds the nearest class in the chain starting at class that
// declares member.
func (t *Table) MemberOwner(class, member string) (string, *Member, bool) {
	for _, name := range append([]string{class}, t.Ancestors(class)...) {
		c, ok := t.classes[name]
		if !ok {
			return "", nil, false
		}
		if m, ok := c.members[member]; ok {
			return name, m, true
		}
	}
	return "", nil, false
}

// FinalMethodOwner finds the nearest strict ancestor of class that declares
// method as final.
func (t *Table) FinalMethodOwner(class, method string) (string, bool) {
	for _, name := range t.Ancestors(class) {
		c, ok := t.classes[name]
		if !ok {
			return "", false
		}
		if m, ok := c.members[method]; ok && m.Final {
			return name, true
		}
	}
	return "", false
}

// CheckExtends verifies that class does not extend a final class.
func (t *Table) CheckExtends(class string) error {
	c, ok := t.classes[class]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if c.Parent == "" {
		return nil
	}
	p, ok := t.classes[c.Parent]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClass, c.Parent)
	}
	if p.Final {
		return &FinalClassError{Class: class, Parent: c.Parent}
	}
	return nil
}

// CheckOverride verifies that declaring method on class does not override a
// final method of an ancestor.
func (t *Table) CheckOverride(class, method string) error {
	if owner, ok := t.FinalMethodOwner(class, method); ok {
		return &FinalMethodError{Class: class, Method: method, Owner: owner}
	}
	return nil
}

// CheckMemberAccess decides whether code in accessing ("" outside any class)
// may use member as declared by declaring. Public members are always
// permitted, private members only from the declaring class and protected
// members from the declaring class and its descendants.
func (t *Table) CheckMemberAccess(accessing, declaring, member string) error {
	c, ok := t.classes[declaring]
	if !ok {
		return nil
	}
	m, ok := c.members[member]
	if !ok {
		return nil
	}
	switch m.Access {
	case ast.Private:
		if accessing != declaring {
			return &AccessError{Access: ast.Private, Member: member, Declaring: declaring, Accessing: accessing}
		}
	case ast.Protected:
		if accessing == "" || !t.IsSubclass(accessing, declaring) {
			return &AccessError{Access: ast.Protected, Member: member, Declaring: declaring, Accessing: accessing}
		}
	}
	return nil
}

// Access resolves the declaring class of member starting from the
// receiver's class and checks it.
func (t *Table) Access(accessing, receiver, member string) error {
	owner, _, ok := t.MemberOwner(receiver, member)
	if !ok {
		return nil
	}
	return t.CheckMemberAccess(accessing, owner, member)
}

// AccessError rejects a private or protected member access.
type AccessError struct {
	Access    ast.AccessModifier
	Member    string
	Declaring string
	Accessing string
}

func (e *AccessError) Error() string {
	if e.Access == ast.Private {
		return fmt.Sprintf("'%s' is private and only accessible within class '%s'", e.Member, e.Declaring)
	}
	return fmt.Sprintf("'%s' is protected and only accessible within class '%s' and its subclasses", e.Member, e.Declaring)
}

// FinalClassError rejects a class extending a final class.
type FinalClassError struct {
	Class, Parent string
}

func (e *FinalClassError) Error() string {
	return fmt.Sprintf("class '%s' cannot extend final class '%s'", e.Class, e.Parent)
}

// FinalMethodError rejects an override of a final method.
type FinalMethodError struct {
	Class, Method, Owner string
}

func (e *FinalMethodError) Error() string {
	return fmt.Sprintf("method '%s' of class '%s' cannot override final method of '%s'", e.Method, e.Class, e.Owner)
}

// CycleError rejects a parent link that closes a cycle.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }
