package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Errors reported when no object can be recovered. Callers treat all of them
// as "no result for this item", never as fatal to a batch.
var (
	ErrNoObject   = errors.New("no JSON object found in response")
	ErrUnbalanced = errors.New("incomplete JSON object in response")
)

// Object recovers a JSON object carrying anchorKey from raw LLM text.
//
// The fast path parses the entire trimmed text directly; it succeeds only when
// the result is an object holding the anchor key. Otherwise the quoted anchor
// key is located in the text and the opening braces before it are tried from
// the nearest outward; each candidate is delimited by brace-depth counting and
// accepted once it parses to an object carrying the anchor key. Anchoring
// avoids matching unrelated JSON fragments earlier in the text, and the
// outward retry tolerates any top-level key order.
func Object(text, anchorKey string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	var whole map[string]any
	if err := json.Unmarshal([]byte(trimmed), &whole); err == nil {
		if _, present := whole[anchorKey]; present {
			return whole, nil
		}
		// The object may still carry the anchor in a nested value; fall
		// through to the anchored scan.
	}

	keyIdx := strings.Index(text, `"`+anchorKey+`"`)
	if keyIdx < 0 {
		return nil, ErrNoObject
	}

	unbalanced := false
	var parseErr error
	for i := keyIdx; i >= 0; i-- {
		if text[i] != '{' {
			continue
		}
		candidate, ok := matchBraces(text[i:])
		if !ok {
			unbalanced = true
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
			parseErr = err
			continue
		}
		if _, present := obj[anchorKey]; present {
			return obj, nil
		}
	}
	if unbalanced {
		return nil, ErrUnbalanced
	}
	if parseErr != nil {
		return nil, fmt.Errorf("parsing extracted object: %w", parseErr)
	}
	return nil, ErrNoObject
}

// matchBraces returns the substring from the leading '{' to its matching '}'.
// Braces inside JSON strings are skipped by tracking quote and escape state.
func matchBraces(text string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}
	return "", false
}

// Correction is the structured result recovered from a fix reply. Original
// holds the verbatim problematic snippet, Fixed the corrected version.
type Correction struct {
	IssueID  int    `json:"issue_id,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Original string `json:"original"`
	Fixed    string `json:"fixed"`
}

// ParseCorrection extracts a Correction object from raw LLM text. Both the
// "original" and "fixed" keys must be present; empty string values are
// allowed, since deleting a line is a valid fix.
func ParseCorrection(text string) (*Correction, error) {
	obj, err := Object(text, "original")
	if err != nil {
		return nil, err
	}

	original, ok := obj["original"].(string)
	if !ok {
		return nil, errors.New(`response object missing "original" string`)
	}
	fixed, ok := obj["fixed"].(string)
	if !ok {
		return nil, errors.New(`response object missing "fixed" string`)
	}

	c := &Correction{Original: original, Fixed: fixed}
	if id, ok := obj["issue_id"].(float64); ok {
		c.IssueID = int(id)
	}
	if file, ok := obj["file"].(string); ok {
		c.File = file
	}
	if line, ok := obj["line"].(float64); ok {
		c.Line = int(line)
	}
	return c, nil
}
