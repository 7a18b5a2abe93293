// symbols/symbol_table.go - Declaration index entry point
//
// The index is split into focused files:
// - symbol_table_core.go: Declaration, Parameter and declaration kinds
// - symbol_table_operations.go: defining and finding declarations
// - symbol_table_traits.go: traits, nominal types, conformances and associated types

package symbols
