// Package worker runs the repository-level analysis job: shallow-clone the
// target repo, gather the files named in the issue report, and ask the model
// for repo-wide recommendations. Results land as a markdown report plus a
// machine-readable summary.
package worker
