package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

func writeSource(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestStageContext(t *testing.T) {
	recipe := domain.DefaultRecipe()
	src := writeSource(t, map[string]string{
		"requirements.txt": "websockets\npython-telegram-bot\n",
		"aster_bot.py":     "print('bot')\n",
		"README.md":        "not a build input\n",
	})

	stage, err := stageContext(recipe, src)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(stage) })

	// Declared inputs and the rendered Dockerfile, nothing else.
	entries, err := os.ReadDir(stage)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"Dockerfile", "requirements.txt", "aster_bot.py"}, names)

	manifest, err := os.ReadFile(filepath.Join(stage, "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, "websockets\npython-telegram-bot\n", string(manifest))

	dockerfile, err := os.ReadFile(filepath.Join(stage, "Dockerfile"))
	require.NoError(t, err)
	want, err := recipe.Dockerfile()
	require.NoError(t, err)
	assert.Equal(t, want, string(dockerfile))
}

func TestStageContextMissingManifest(t *testing.T) {
	recipe := domain.DefaultRecipe()
	src := writeSource(t, map[string]string{
		"aster_bot.py": "print('bot')\n",
	})

	_, err := stageContext(recipe, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Contains(t, err.Error(), "requirements.txt")
}

func TestStageContextMissingAppFile(t *testing.T) {
	recipe := domain.DefaultRecipe()
	src := writeSource(t, map[string]string{
		"requirements.txt": "websockets\n",
	})

	_, err := stageContext(recipe, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Contains(t, err.Error(), "aster_bot.py")
}

// A recipe that never went through Validate still must not write outside the
// staging sandbox: a traversal manifest fails the stage before any copy.
func TestStageContextRejectsTraversal(t *testing.T) {
	recipe := domain.DefaultRecipe()
	recipe.Manifest = "../x/evil.txt"
	src := writeSource(t, map[string]string{
		"aster_bot.py": "print('bot')\n",
	})

	_, err := stageContext(recipe, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the staging dir")

	recipe = domain.DefaultRecipe()
	recipe.AppFiles = []string{"/etc/passwd"}
	src = writeSource(t, map[string]string{
		"requirements.txt": "websockets\n",
	})

	_, err = stageContext(recipe, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the staging dir")
}

func TestStageContextNestedAppFile(t *testing.T) {
	recipe := domain.DefaultRecipe()
	recipe.AppFiles = []string{"aster_bot.py", "src/helpers.py"}

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "requirements.txt"), []byte("websockets\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "aster_bot.py"), []byte("print('bot')\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "src", "helpers.py"), []byte("HELP = True\n"), 0o644))

	stage, err := stageContext(recipe, src)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(stage) })

	staged, err := os.ReadFile(filepath.Join(stage, "src", "helpers.py"))
	require.NoError(t, err)
	assert.Equal(t, "HELP = True\n", string(staged))
}

func TestResolveSourceLocalDir(t *testing.T) {
	src := writeSource(t, map[string]string{"requirements.txt": ""})

	dir, cleanup, err := resolveSource(context.Background(), ports.BuildSource{Dir: src})
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, src, dir)
}

func TestResolveSourceRejectsAmbiguity(t *testing.T) {
	_, _, err := resolveSource(context.Background(), ports.BuildSource{Dir: "/tmp", RepoURL: "https://example.com/r.git"})
	assert.ErrorContains(t, err, "not both")

	_, _, err = resolveSource(context.Background(), ports.BuildSource{})
	assert.ErrorContains(t, err, "empty")
}

func TestResolveSourceRejectsFile(t *testing.T) {
	src := writeSource(t, map[string]string{"requirements.txt": ""})

	_, _, err := resolveSource(context.Background(), ports.BuildSource{Dir: filepath.Join(src, "requirements.txt")})
	assert.ErrorContains(t, err, "not a directory")
}
