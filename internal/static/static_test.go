package static

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findByMessage(issues []Issue, fragment string) *Issue {
	for i := range issues {
		if strings.Contains(issues[i].Message, fragment) {
			return &issues[i]
		}
	}
	return nil
}

func TestAnalyze_TODO(t *testing.T) {
	issues := Analyze("main.go", "x := 1\n// TODO: handle overflow\n")
	issue := findByMessage(issues, "TODO")
	require.NotNil(t, issue)
	assert.Equal(t, 2, issue.Line)
	assert.Equal(t, SeverityInfo, issue.Severity)
}

func TestAnalyze_PrintOnlyInPython(t *testing.T) {
	content := "print(\"debug\")\n"
	assert.NotNil(t, findByMessage(Analyze("app.py", content), "print statement"))
	assert.Nil(t, findByMessage(Analyze("app.go", content), "print statement"))
}

func TestAnalyze_LongLine(t *testing.T) {
	long := strings.Repeat("a", 130)
	issues := Analyze("app.py", long+"\n")
	issue := findByMessage(issues, "120 characters")
	require.NotNil(t, issue)
	assert.LessOrEqual(t, len(issue.Code), 53, "code excerpt should be capped")
}

func TestAnalyze_EmptyCatch(t *testing.T) {
	content := "try:\n    risky()\nexcept:\n    pass\n"
	issues := Analyze("app.py", content)
	issue := findByMessage(issues, "Handle the exception")
	require.NotNil(t, issue)
	assert.Equal(t, "bug", issue.Type)
	assert.Equal(t, SeverityMajor, issue.Severity)
}

func TestAnalyze_HardcodedCredential(t *testing.T) {
	issues := Analyze("settings.py", "password=\"hunter2\"\n")
	issue := findByMessage(issues, "hardcoded credential")
	require.NotNil(t, issue)
	assert.Equal(t, "vulnerability", issue.Type)
	assert.Equal(t, SeverityBlocker, issue.Severity)

	// Commented-out credentials are ignored.
	assert.Nil(t, findByMessage(Analyze("settings.py", "# password=\"hunter2\"\n"), "hardcoded"))
}

func TestAnalyze_UnusedImport(t *testing.T) {
	content := "import unused_module\nimport json\n\nprint(json.dumps({}))\n"
	issues := Analyze("app.py", content)
	issue := findByMessage(issues, "Unused import")
	require.NotNil(t, issue)
	assert.Equal(t, "Unused import: unused_module", issue.Message)
	assert.Nil(t, findByMessage(issues, "Unused import: json"))
}

func TestAnalyze_CleanFile(t *testing.T) {
	issues := Analyze("clean.go", "package clean\n\nfunc Add(a, b int) int { return a + b }\n")
	assert.Empty(t, issues)
}
