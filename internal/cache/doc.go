// Package cache provides file-based caching of model responses so repeated
// analyses of unchanged content skip the model call entirely. Entries are
// keyed on host, model, and the full prompt, and expire by TTL.
package cache
