// Package provider wraps each external event source behind a single
// contract: Fetch a date range, get back a Result value.
//
// Adapters never let a fault escape their boundary. Network errors, parse
// errors, and render-engine failures all come back as error-status Results;
// a missing credential comes back as a skip. The orchestrator can therefore
// fan out to every adapter without caring which one wraps an HTTP API, a
// scraped page, or a headless browser.
package provider
