// Package fix asks the model for corrections to reported rule violations.
// Each issue is resolved to its rule, paired with a source snippet around
// the reported line, and sent as one prompt demanding a strict JSON reply.
// Issues are processed concurrently with partial-failure tolerance.
package fix
