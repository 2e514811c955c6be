// Package extract implements the cascading extraction strategies shared by
// the static-HTML and rendered-page adapters.
//
// A Strategy inspects a parsed document and returns a possibly-empty list of
// canonical events. Cascade applies strategies in order and stops at the
// first non-empty result, so structured data (JSON-LD) always wins over
// heuristic DOM scanning, and each strategy stays independently testable.
package extract
