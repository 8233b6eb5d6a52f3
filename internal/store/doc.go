// Package store persists goals, the user config and check-in history as JSON
// and markdown files under a single data root.
//
// # Layout
//
//	{root}/goals.json                   every goal, one array
//	{root}/config.json                  singleton config
//	{root}/settings.yaml                user-authored settings (read by package config)
//	{root}/checkins/{date}-{type}.md    narrative of one check-in
//	{root}/checkins/{date}-{type}.json  structured record with the goal snapshot
//	{root}/backups/*.bak                rotated copies written before each overwrite
//
// # Load Semantics
//
// A missing file loads as the empty value. A file that cannot be decoded also
// loads as the empty value and is reported at warn level; the previous good
// copy is still in backups/. Only I/O failures other than "not exist" are
// returned as errors.
//
// # Writes
//
// Every save rewrites the whole document through atomicfile.Store, taking a
// backup of the previous version first. Add and Update are read-modify-write
// cycles; WithLocking serializes them across processes with an advisory lock.
package store
