package cli

import (
	"testing"

	"github.com/pre-msc-2027/remedy/internal/rules"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagHost = ""
	flagModel = ""
	flagConcurrency = 0
	flagTimeout = 0
	flagOutputDir = ""
	flagWorkspace = ""
	flagNoRedact = false
	flagNoCache = false
	flagStream = false
	flagIssues = ""
	flagRules = ""
	flagFormat = ""
	flagOut = ""
	flagRepo = ""
	flagBranch = ""
	flagJobIssues = ""
	flagJobRules = ""
	flagAddr = ""
}

func TestBuildOverrides_Empty(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with zero flags = %v, want empty", m)
	}
}

func TestBuildOverrides_SetFlags(t *testing.T) {
	resetFlags()
	flagHost = "http://box:11434"
	flagModel = "qwen2.5-coder"
	flagConcurrency = 8
	flagTimeout = 120
	flagOutputDir = "/tmp/reports"
	flagWorkspace = "/src"

	m := buildOverrides()
	want := map[string]string{
		"host":           "http://box:11434",
		"model":          "qwen2.5-coder",
		"concurrency":    "8",
		"timeoutSeconds": "120",
		"outputDir":      "/tmp/reports",
		"workspace":      "/src",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
	if len(m) != len(want) {
		t.Errorf("buildOverrides() has %d entries, want %d", len(m), len(want))
	}
}

func TestLoadConfig_FlagAdjustments(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	flagNoRedact = true
	flagNoCache = true
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Privacy.RedactSecrets {
		t.Error("--no-redact must disable redaction")
	}
	if cfg.Cache.Enabled {
		t.Error("--no-cache must disable the cache")
	}
}

func TestCollectRules_Dedups(t *testing.T) {
	set := rules.NewSet(
		[]rules.Issue{
			{ID: 1, RuleID: 101, File: "a.py", Line: 1},
			{ID: 2, RuleID: 101, File: "a.py", Line: 5},
			{ID: 3, RuleID: 102, File: "b.py", Line: 2},
			{ID: 4, RuleID: 999, File: "b.py", Line: 3},
		},
		[]rules.Rule{
			{RuleID: 101, Name: "no-unused-imports"},
			{RuleID: 102, Name: "line-too-long"},
		},
	)

	got := collectRules(set)
	if len(got) != 2 {
		t.Fatalf("collectRules returned %d rules, want 2", len(got))
	}
	if got[0].RuleID != 101 || got[1].RuleID != 102 {
		t.Errorf("collectRules order = %v", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{5 << 20, "5 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestRenderBatchSummary(t *testing.T) {
	// Styled output still carries the counts regardless of terminal support.
	for _, tt := range []struct{ ok, total int }{{3, 3}, {1, 3}, {0, 3}} {
		got := renderBatchSummary("Fixes", tt.ok, tt.total, 1.5)
		if got == "" {
			t.Errorf("renderBatchSummary(%d/%d) empty", tt.ok, tt.total)
		}
	}
}
