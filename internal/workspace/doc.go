// Package workspace confines file access to a root directory and provides
// line-oriented reads: full files, 1-indexed line ranges, and context
// snippets around a reported issue line.
package workspace
