// Package atomicfile writes whole files so that readers only ever observe the
// old content or the new content, never a mix of the two.
//
// # Write Protocol
//
// Write stages the content in a temp file beside the target, fsyncs it,
// renames it over the target and then fsyncs the directory (best effort).
// Any failure before the rename removes the temp file and leaves the target
// untouched.
//
// # Backups
//
// Before overwriting, Write can copy the current file into the backup
// directory as {base}.{YYYYMMDDHHMMSS}.bak. Only the newest Keep backups per
// base name are retained. Failing to copy aborts the write; failing to prune
// is logged and ignored.
//
// # Locking
//
// Lock takes an exclusive advisory lock on {path}.lock. It uses flock(2) on
// unix and is a no-op elsewhere. Callers hold it across a read-modify-write
// cycle.
package atomicfile
