// Package model defines the persisted records of horizonte: goals, milestones,
// check-ins with their goal snapshots, and the singleton user config.
//
// # Enumerations
//
// Category, Horizon, Status and CheckInType are closed sets. Each exposes
// Parse<Type>, Valid and text (un)marshalers that reject unknown values, so a
// record that decodes is a record whose enums are known. Consumers switch over
// the declared constants and treat the default branch as an unhandled value.
//
// # Snapshots
//
// A check-in carries a Snapshot: deep copies of every active goal taken at
// check-in time. Snapshots never alias the live goal collection; mutating a
// goal after TakeSnapshot leaves the snapshot unchanged.
//
// # Wire Format
//
// JSON field names are snake_case and match the files written under the data
// root (goals.json, config.json, checkins/*.json).
package model
