// Package gitops clones repositories for offline analysis using go-git.
// Clones are shallow: the worker only needs the tree at one branch head,
// never the history.
package gitops
