// Package ledger records run and per-case outcomes in SQLite so the report
// command can answer "what happened last night" after a multi-hour run.
//
// The ledger is observability only. Resume decisions are derived from the
// destination directory scan and never consult this database; deleting
// ledger.db loses history, not correctness.
package ledger
