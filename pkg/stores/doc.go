// Package stores provides the SQLite-backed release history: an
// append-only audit trail of release runs and the artifacts they
// produced. The history is metadata only; artifact existence on disk
// stays the sole idempotency signal for the release orchestrator.
package stores
