// Package tracker implements the goal workflows on top of the repositories:
// creating and editing goals, lifecycle transitions, milestone breakdowns and
// the periodic check-in that updates progress and records history.
//
// The suggestion service is optional. Every workflow has a manual path and
// falls back to it whenever a suggestion fails.
package tracker
