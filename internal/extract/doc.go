// Package extract recovers structured JSON objects from free-form LLM text.
//
// Models reliably emit syntactically valid JSON but unreliably avoid wrapping
// it in prose or markdown fences. Object first tries to parse the whole reply,
// then falls back to locating the object by a required anchor key and matching
// braces by depth. Brace counting is string-aware, so nested objects and brace
// characters inside string values do not confuse the scan. No regular
// expressions are used anywhere in the matching path.
package extract
