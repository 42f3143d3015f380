package rules

import (
	"encoding/json"
	"fmt"
	"os"
)

// Issue is one reported rule violation in a file.
type Issue struct {
	ID     int    `json:"id"`
	RuleID int    `json:"rule_id"`
	File   string `json:"file"`
	Line   int    `json:"line"`
}

// Rule describes a coding-standard check.
type Rule struct {
	RuleID      int            `json:"rule_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Language    string         `json:"language"`
	Tags        []string       `json:"tags,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// UnmarshalJSON accepts both "description" and the upstream "Description"
// key casing.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type alias Rule
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Rule(a)
	if r.Description == "" {
		var compat struct {
			Description string `json:"Description"`
		}
		if err := json.Unmarshal(data, &compat); err == nil {
			r.Description = compat.Description
		}
	}
	return nil
}

// Set holds a loaded issue report and its rule definitions.
type Set struct {
	Issues []Issue
	rules  map[int]Rule
}

// LoadIssues parses an issue list from JSON data.
func LoadIssues(data []byte) ([]Issue, error) {
	var issues []Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("parsing issues: %w", err)
	}
	return issues, nil
}

// LoadRules parses a rule list from JSON data.
func LoadRules(data []byte) ([]Rule, error) {
	var rs []Rule
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return rs, nil
}

// LoadSet reads issues and rules from two JSON files.
func LoadSet(issuesPath, rulesPath string) (*Set, error) {
	issuesData, err := os.ReadFile(issuesPath)
	if err != nil {
		return nil, fmt.Errorf("reading issues file: %w", err)
	}
	issues, err := LoadIssues(issuesData)
	if err != nil {
		return nil, err
	}

	rulesData, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rs, err := LoadRules(rulesData)
	if err != nil {
		return nil, err
	}

	return NewSet(issues, rs), nil
}

// NewSet builds a Set from already-parsed issues and rules.
func NewSet(issues []Issue, rs []Rule) *Set {
	byID := make(map[int]Rule, len(rs))
	for _, r := range rs {
		byID[r.RuleID] = r
	}
	return &Set{Issues: issues, rules: byID}
}

// RuleFor returns the rule an issue violates, or false if no rule with that
// id was loaded.
func (s *Set) RuleFor(issue Issue) (Rule, bool) {
	r, ok := s.rules[issue.RuleID]
	return r, ok
}

// IssuesByFile returns all issues reported against one file path.
func (s *Set) IssuesByFile(path string) []Issue {
	var out []Issue
	for _, issue := range s.Issues {
		if issue.File == path {
			out = append(out, issue)
		}
	}
	return out
}

// Len returns the number of loaded issues.
func (s *Set) Len() int { return len(s.Issues) }
