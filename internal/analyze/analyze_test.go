package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pre-msc-2027/remedy/internal/cache"
	"github.com/pre-msc-2027/remedy/internal/config"
	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/workspace"
)

// fakeChatter returns canned responses and records the prompts it saw.
type fakeChatter struct {
	response string
	err      error
	prompts  []string
	calls    int
}

func (f *fakeChatter) Chat(_ context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error) {
	f.calls++
	f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
	if f.err != nil {
		return ollama.ChatResponse{}, f.err
	}
	return ollama.ChatResponse{Content: f.response, Model: req.Model}, nil
}

func (f *fakeChatter) ChatStream(ctx context.Context, req ollama.ChatRequest, fn ollama.ChunkFunc) (ollama.ChatResponse, error) {
	resp, err := f.Chat(ctx, req)
	if err != nil {
		return resp, err
	}
	if fn != nil {
		if err := fn(resp.Content); err != nil {
			return ollama.ChatResponse{}, err
		}
	}
	return resp, nil
}

func testAnalyzer(t *testing.T, chatter ollama.Chatter) (*Analyzer, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	c, err := cache.New(true, t.TempDir(), 3600)
	require.NoError(t, err)
	return &Analyzer{Client: chatter, Config: &cfg, Cache: c}, &cfg
}

func testWorkspace(t *testing.T, files map[string]string) *workspace.Workspace {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	ws, err := workspace.New(dir)
	require.NoError(t, err)
	return ws
}

func TestTruncate(t *testing.T) {
	content := strings.Repeat("x", 150)

	got, truncated := Truncate(content, 100)
	assert.True(t, truncated)
	assert.Equal(t, 100+len(truncationMarker), len(got))
	assert.True(t, strings.HasSuffix(got, truncationMarker))

	got, truncated = Truncate("short", 100)
	assert.False(t, truncated)
	assert.Equal(t, "short", got)

	// Content exactly at the ceiling passes through untouched.
	exact := strings.Repeat("y", 100)
	got, truncated = Truncate(exact, 100)
	assert.False(t, truncated)
	assert.Equal(t, exact, got)
}

func TestFile_WritesReport(t *testing.T) {
	chatter := &fakeChatter{response: "Looks fine overall."}
	a, cfg := testAnalyzer(t, chatter)
	ws := testWorkspace(t, map[string]string{"main.py": "print('hi')\n"})

	report, err := a.File(context.Background(), ws, "main.py")
	require.NoError(t, err)
	assert.Equal(t, "Looks fine overall.", report.Response)
	assert.False(t, report.Truncated)
	assert.False(t, report.FromCache)

	matches, err := filepath.Glob(filepath.Join(cfg.OutputDir, "main_analysis_*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Looks fine overall.")
	assert.Contains(t, string(data), "main.py")
}

func TestFile_StaticFindingsInPrompt(t *testing.T) {
	chatter := &fakeChatter{response: "noted"}
	a, _ := testAnalyzer(t, chatter)
	ws := testWorkspace(t, map[string]string{"app.py": "# TODO: fix this\nprint('debug')\n"})

	_, err := a.File(context.Background(), ws, "app.py")
	require.NoError(t, err)
	require.Len(t, chatter.prompts, 1)
	assert.Contains(t, chatter.prompts[0], "Static analysis already flagged")
}

func TestFile_TruncatesLargeContent(t *testing.T) {
	chatter := &fakeChatter{response: "ok"}
	a, cfg := testAnalyzer(t, chatter)
	cfg.MaxContentBytes = 200
	ws := testWorkspace(t, map[string]string{"big.txt": strings.Repeat("a", 500)})

	report, err := a.File(context.Background(), ws, "big.txt")
	require.NoError(t, err)
	assert.True(t, report.Truncated)
	assert.Contains(t, chatter.prompts[0], truncationMarker)
	assert.NotContains(t, chatter.prompts[0], strings.Repeat("a", 201))
}

func TestFile_RedactsSecrets(t *testing.T) {
	chatter := &fakeChatter{response: "ok"}
	a, _ := testAnalyzer(t, chatter)
	ws := testWorkspace(t, map[string]string{
		"cfg.py": `api_key="sk1234567890abcdefghijklmnop"` + "\n",
	})

	_, err := a.File(context.Background(), ws, "cfg.py")
	require.NoError(t, err)
	require.Len(t, chatter.prompts, 1)
	assert.NotContains(t, chatter.prompts[0], "sk1234567890abcdefghijklmnop")
	assert.Contains(t, chatter.prompts[0], "[REDACTED]")
}

func TestFile_CacheHitSkipsModel(t *testing.T) {
	chatter := &fakeChatter{response: "from the model"}
	a, _ := testAnalyzer(t, chatter)
	ws := testWorkspace(t, map[string]string{"f.py": "# TODO: cache me\nx = 1\n"})

	first, err := a.File(context.Background(), ws, "f.py")
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := a.File(context.Background(), ws, "f.py")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, 1, chatter.calls)
}

func TestFiles_PartialFailure(t *testing.T) {
	chatter := &fakeChatter{response: "ok"}
	a, _ := testAnalyzer(t, chatter)
	ws := testWorkspace(t, map[string]string{
		"a.py": "# TODO: one\nx = 1\n",
		"c.py": "# TODO: two\ny = 2\n",
	})

	res, err := a.Files(context.Background(), ws, []string{"a.py", "missing.py", "c.py"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.NotNil(t, res.Items[0])
	assert.Nil(t, res.Items[1])
	assert.NotNil(t, res.Items[2])
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, "a.py", res.Items[0].Path)
	assert.Equal(t, "c.py", res.Items[2].Path)
}

func TestFiles_EmptyBatch(t *testing.T) {
	a, _ := testAnalyzer(t, &fakeChatter{})
	ws := testWorkspace(t, nil)
	_, err := a.Files(context.Background(), ws, nil)
	assert.Error(t, err)
}

func TestFile_ModelError(t *testing.T) {
	chatter := &fakeChatter{err: fmt.Errorf("boom")}
	a, _ := testAnalyzer(t, chatter)
	ws := testWorkspace(t, map[string]string{"f.py": "# TODO: x\n"})

	_, err := a.File(context.Background(), ws, "f.py")
	assert.Error(t, err)
}

func TestFile_CleanFileSkipsModel(t *testing.T) {
	chatter := &fakeChatter{response: "unused"}
	a, _ := testAnalyzer(t, chatter)
	ws := testWorkspace(t, map[string]string{"clean.py": "x = 1\n"})

	report, err := a.File(context.Background(), ws, "clean.py")
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.Equal(t, "No issues detected.", report.Response)
	assert.Zero(t, chatter.calls)
	assert.Empty(t, report.OutputPath)
}
