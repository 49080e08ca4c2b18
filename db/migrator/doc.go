// Package migrator manages database schema migrations of a single SQLite
// database.
//
// Features:
//   - Discovers migration units from a directory of `{timestamp}_{name}.sql` files,
//     each with `-- +migrate Up` and an optional `-- +migrate Down` section
//   - Tracks the status of each unit (pending or applied) in a bookkeeping table
//     inside the same database
//   - Applies all pending units oldest first, and reverts the most recently
//     registered applied unit, one step at a time
//   - Runs each unit together with its status update in a single transaction
//   - Optionally removes unrecognized files from the migrations directory
//
// Units are resolved by name through an explicit Resolver, so compiled Go units
// can be mixed with SQL files.
//
// Running multiple Runners against the same database concurrently is not
// supported, and its outcome is undefined.
package migrator
