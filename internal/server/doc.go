// Package server exposes the repository-analysis worker over HTTP. Jobs are
// submitted to POST /improve-code, run asynchronously, and are polled through
// the status, logs, and jobs endpoints. State lives in an in-memory store;
// jobs do not survive a restart.
package server
