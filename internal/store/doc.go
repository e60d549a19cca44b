// Package store provides SQLite-backed storage for recorded scenario runs.
//
// A recorded run keeps the scenario source exactly as it was loaded together
// with the canonical trace it produced, so the run can be replayed later and
// checked for determinism.
//
//   - runs: one row per recording (scenario source, format, tick count)
//   - samples: one row per tick holding the canonical values object
//
// # Ordering
//
// Runs are ordered by created_seq, a logical counter assigned at write time,
// never by wall-clock timestamps. Samples are ordered by tick. Every query
// carries an explicit ORDER BY so results are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
