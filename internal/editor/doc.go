// Package editor is the editor-state facade: it owns one document's
// engine, display map, syntax worker, search state, fold state, and the
// LSP popup models, and routes editor actions into them.
//
// The facade surfaces outcomes, not errors: actions either mutate state
// or are no-ops, queries always return a defined value. Failures of the
// non-essential subsystems (LSP, syntax) degrade features without
// blocking input.
package editor
