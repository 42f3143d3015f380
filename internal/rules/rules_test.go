package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules_DescriptionCasing(t *testing.T) {
	data := []byte(`[
		{"rule_id": 1, "name": "Unused Import", "Description": "Remove unused imports", "language": "python"},
		{"rule_id": 2, "name": "Line Length", "description": "Split long lines", "language": "python",
		 "parameters": {"max": 120}}
	]`)
	rs, err := LoadRules(data)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "Remove unused imports", rs[0].Description)
	assert.Equal(t, "Split long lines", rs[1].Description)
	assert.Equal(t, float64(120), rs[1].Parameters["max"])
}

func TestSet_RuleFor(t *testing.T) {
	set := NewSet(
		[]Issue{{ID: 10, RuleID: 1, File: "a.py", Line: 3}, {ID: 11, RuleID: 99, File: "b.py", Line: 8}},
		[]Rule{{RuleID: 1, Name: "Unused Import"}},
	)

	r, ok := set.RuleFor(set.Issues[0])
	require.True(t, ok)
	assert.Equal(t, "Unused Import", r.Name)

	_, ok = set.RuleFor(set.Issues[1])
	assert.False(t, ok, "unknown rule id must report absence")
}

func TestSet_IssuesByFile(t *testing.T) {
	set := NewSet([]Issue{
		{ID: 1, File: "a.py"},
		{ID: 2, File: "b.py"},
		{ID: 3, File: "a.py"},
	}, nil)

	issues := set.IssuesByFile("a.py")
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].ID)
	assert.Equal(t, 3, issues[1].ID)
}

func TestLoadSet_FromFiles(t *testing.T) {
	dir := t.TempDir()
	issuesPath := filepath.Join(dir, "issues.json")
	rulesPath := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(issuesPath,
		[]byte(`[{"id": 1, "rule_id": 5, "file": "main.py", "line": 12}]`), 0o644))
	require.NoError(t, os.WriteFile(rulesPath,
		[]byte(`[{"rule_id": 5, "name": "No print", "Description": "Use a logger", "language": "python"}]`), 0o644))

	set, err := LoadSet(issuesPath, rulesPath)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())

	r, ok := set.RuleFor(set.Issues[0])
	require.True(t, ok)
	assert.Equal(t, "No print", r.Name)
}

func TestLoadSet_MissingFile(t *testing.T) {
	_, err := LoadSet(filepath.Join(t.TempDir(), "nope.json"), "also-nope.json")
	assert.Error(t, err)
}
