// Package export writes the goal collection and check-in history into a
// SQLite database for ad-hoc querying.
//
// The JSON data root stays the source of truth. Each Export call replaces
// every table in a single transaction, so the database always reflects one
// consistent read of the data root.
//
// # Tables
//
//   - goals, milestones: the current goal collection
//   - checkins, snapshots: one row per check-in and per goal recorded in it
//   - periods, period_categories: the analytics history
//   - export_meta: export time and source root
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package export
