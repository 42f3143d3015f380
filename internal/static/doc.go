// Package static runs cheap per-line heuristics over source content and
// reports SonarQube-shaped issues. These checks decide whether a file is
// worth sending to the model at all; they are not a real analyzer.
package static
