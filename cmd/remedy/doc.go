// Remedy is a local-first CLI for analyzing and fixing code with an Ollama
// model.
//
// It reviews individual files, generates corrections for static-analysis
// issue reports, and can serve the same pipeline as a repository-analysis
// job API. All model traffic stays on the local machine.
//
// Usage:
//
//	remedy analyze main.py            # analyze one file
//	remedy analyze src/*.py           # analyze files concurrently
//	remedy fix --issues issues.json --rules rules.json
//	remedy worker --repo <url>        # clone and analyze a repository
//	remedy serve                      # run the job orchestration API
//	remedy models                     # list models on the Ollama server
//
// See https://github.com/pre-msc-2027/remedy for full documentation.
package main
