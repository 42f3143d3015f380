package static

import (
	"strings"
)

// Severity levels mirror the SonarQube vocabulary.
const (
	SeverityInfo    = "INFO"
	SeverityMinor   = "MINOR"
	SeverityMajor   = "MAJOR"
	SeverityBlocker = "BLOCKER"
)

// Issue is one detected problem, shaped like a SonarQube issue.
type Issue struct {
	Line     int    `json:"line"`
	Type     string `json:"type"` // code_smell, bug, vulnerability
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

const maxLineLength = 120

// checker inspects one line in context and reports an issue or nil.
type checker func(ctx *fileContext, line string, lineNumber int) *Issue

type fileContext struct {
	path    string
	content string
	lines   []string
}

var checkers = []checker{
	checkTODOComments,
	checkPrintStatements,
	checkLongLines,
	checkEmptyCatchBlocks,
	checkHardcodedCredentials,
	checkUnusedImports,
}

// Analyze scans content and returns all detected issues in line order.
func Analyze(path, content string) []Issue {
	ctx := &fileContext{
		path:    path,
		content: content,
		lines:   strings.Split(content, "\n"),
	}

	var issues []Issue
	for i, line := range ctx.lines {
		lineNumber := i + 1
		for _, check := range checkers {
			if issue := check(ctx, line, lineNumber); issue != nil {
				issues = append(issues, *issue)
			}
		}
	}
	return issues
}

func checkTODOComments(_ *fileContext, line string, lineNumber int) *Issue {
	upper := strings.ToUpper(line)
	if !strings.Contains(upper, "TODO") && !strings.Contains(upper, "FIXME") {
		return nil
	}
	return &Issue{
		Line:     lineNumber,
		Type:     "code_smell",
		Severity: SeverityInfo,
		Message:  "Complete the task associated to this TODO comment",
		Code:     strings.TrimSpace(line),
	}
}

func checkPrintStatements(ctx *fileContext, line string, lineNumber int) *Issue {
	if !strings.HasSuffix(ctx.path, ".py") || !strings.Contains(line, "print(") {
		return nil
	}
	return &Issue{
		Line:     lineNumber,
		Type:     "code_smell",
		Severity: SeverityMinor,
		Message:  "Replace this print statement by a logger call",
		Code:     strings.TrimSpace(line),
	}
}

func checkLongLines(_ *fileContext, line string, lineNumber int) *Issue {
	if len(line) <= maxLineLength {
		return nil
	}
	code := strings.TrimSpace(line)
	if len(code) > 50 {
		code = code[:50] + "..."
	}
	return &Issue{
		Line:     lineNumber,
		Type:     "code_smell",
		Severity: SeverityMinor,
		Message:  "Split this line (longer than the 120 characters authorized)",
		Code:     code,
	}
}

func checkEmptyCatchBlocks(ctx *fileContext, line string, lineNumber int) *Issue {
	if !strings.HasSuffix(ctx.path, ".py") {
		return nil
	}
	stripped := strings.TrimSpace(line)
	if !strings.Contains(stripped, "except:") || lineNumber >= len(ctx.lines) {
		return nil
	}
	next := strings.TrimSpace(ctx.lines[lineNumber])
	if !strings.HasPrefix(next, "pass") {
		return nil
	}
	return &Issue{
		Line:     lineNumber,
		Type:     "bug",
		Severity: SeverityMajor,
		Message:  "Handle the exception or explain in a comment why it can be ignored",
		Code:     stripped + "\\n" + next,
	}
}

var credentialKeywords = []string{"password=", "secret=", "api_key=", "token=", "secret_key"}

func checkHardcodedCredentials(_ *fileContext, line string, lineNumber int) *Issue {
	lower := strings.ToLower(line)
	found := false
	for _, kw := range credentialKeywords {
		if strings.Contains(lower, kw) {
			found = true
			break
		}
	}
	if !found || strings.HasPrefix(strings.TrimSpace(line), "#") {
		return nil
	}
	return &Issue{
		Line:     lineNumber,
		Type:     "vulnerability",
		Severity: SeverityBlocker,
		Message:  "Review this hardcoded credential",
		Code:     strings.TrimSpace(line),
	}
}

func checkUnusedImports(ctx *fileContext, line string, lineNumber int) *Issue {
	if !strings.HasSuffix(ctx.path, ".py") {
		return nil
	}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "import ") || strings.Contains(line, "import os") {
		return nil
	}

	name := strings.TrimPrefix(trimmed, "import ")
	if i := strings.Index(name, " as "); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	// Naive check: the module name never appears after the import line.
	idx := strings.Index(ctx.content, line)
	if idx < 0 {
		return nil
	}
	rest := ctx.content[idx+len(line):]
	if strings.Contains(rest, name) {
		return nil
	}
	return &Issue{
		Line:     lineNumber,
		Type:     "code_smell",
		Severity: SeverityMinor,
		Message:  "Unused import: " + name,
		Code:     trimmed,
	}
}
