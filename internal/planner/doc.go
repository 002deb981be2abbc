// Package planner handles the classification phase of changelist validation.
//
// The planner inspects a snapshot of a pending changelist and decides which
// opened files are inconsistent with the local workspace. It never talks to
// the server beyond resolving depot paths and never mutates anything; the
// resulting RemediationPlan is executed by the changelist package.
//
// Key responsibilities:
//   - Detect add and move/add entries whose local file is missing
//   - Split them into revert-only and revert-then-delete sets
//   - Keep the result deterministic (sorted, de-duplicated, disjoint)
package planner
