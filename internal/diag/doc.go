// Package diag defines the diagnostic model shared by all pipeline stages.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings of the
//     lexer, block structurer, symbol resolver and macro expander.
//   - Offer light-weight utilities (Reporter, Bag) that let stages emit
//     diagnostics without coupling to storage or formatting layers.
//
// Package diag does not format for terminals or do IO. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – numeric identifier with a stable string form (see codes.go).
//     The thousands digit selects the family: 1 LEX, 2 STR, 3 SYM, 4 MAC,
//     5 IO, 6 CFG, 7 OBS. Code.Class maps a code to the error taxonomy
//     (LexError, StructureError, UnresolvedSymbolError, CyclicConstantError,
//     MacroArgumentError).
//   - Message – short, actionable text that names the offending identifier.
//   - Primary span – where the problem is.
//   - Notes – secondary spans, e.g. "block opened here".
//
// # Reporting
//
// Stages receive a Reporter and build diagnostics with ReportError(...)
// .WithNote(...).Emit(). BagReporter stores them in the document's Bag;
// DedupReporter drops repeats produced by cloned tokens.
package diag
