// Package cli implements the event-skill command line interface: flag
// handling, the fetch pipeline (resolve range, fan out, dedup, filter,
// cache), and JSON/text result rendering.
package cli
