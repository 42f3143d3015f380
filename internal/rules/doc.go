// Package rules models SonarQube-style issue reports: issues referencing
// coding-standard rules by id, and the rules themselves with their language,
// description, and parameter mapping. Both load from the JSON shapes emitted
// upstream.
package rules
