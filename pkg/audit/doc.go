// Package audit records one row per relayed exchange so that traffic
// funneled through the single upstream link can be reconstructed later.
//
// Recording is asynchronous: the relay path hands a record to a buffered
// channel and moves on. When the buffer is full the record is dropped and
// counted — the audit trail must never add latency to, or deadlock, the
// single-in-flight exchange loop.
//
// Storage is SQLite (pure-Go driver) with WAL mode, and a cron-scheduled
// pruner keeps the table bounded by age and row count.
package audit
