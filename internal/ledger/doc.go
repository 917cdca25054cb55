// Package ledger persists the append-only audit trail of scan dispositions in
// SQLite.
//
// Entries are never updated or deleted. Each append runs in one transaction,
// serialized in-process by a mutex and across processes by a flock on the
// ledger lock file, and extends a sha256 hash chain so tampering with stored
// rows is detectable through VerifyChain. Scan-producing entries carry a JSON
// snapshot of the measured elements; Replay decodes that snapshot without
// touching the stored row. Verification entries reference the entry they
// replayed through RelatedEntryID and embed their own copy of the snapshot.
//
// The same database holds the named parameter table used to persist the
// tolerance profile; see Parameters.
package ledger
