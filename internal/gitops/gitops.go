package gitops

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CloneOptions selects what to fetch.
type CloneOptions struct {
	URL    string
	Branch string // empty means the remote default branch
	Depth  int    // commits to fetch, 1 if <= 0
}

// Clone performs a shallow clone of the repository into dir and returns the
// checked-out commit hash.
func Clone(ctx context.Context, dir string, opts CloneOptions) (string, error) {
	if opts.URL == "" {
		return "", fmt.Errorf("clone: empty repository URL")
	}
	depth := opts.Depth
	if depth <= 0 {
		depth = 1
	}

	cloneOpts := &git.CloneOptions{
		URL:          opts.URL,
		Depth:        depth,
		SingleBranch: true,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil {
		return "", fmt.Errorf("cloning %s: %w", opts.URL, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// IsRepo reports whether dir is a git repository.
func IsRepo(dir string) bool {
	_, err := git.PlainOpen(dir)
	return err == nil
}

// CommitHash returns the HEAD commit of the repository at dir.
func CommitHash(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}
	return head.Hash().String(), nil
}
