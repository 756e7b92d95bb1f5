// symbols/symbol_table.go - Main symbol table entry point
//
// The table is split into focused files:
// - symbol_table_core.go: Symbol and Scope types, scope kinds, errors
// - symbol_table_init.go: Prelude initialization and built-in functions
// - symbol_table_operations.go: Scope stack and declare/lookup operations

package symbols
