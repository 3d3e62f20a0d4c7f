package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirectoryFingerprintStable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "description.txt", "A project about judging projects.")
	writeFile(t, root, "code/main.py", "print('hello')\n")

	first, err := DirectoryFingerprint(root, nil)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := DirectoryFingerprint(root, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second, "unchanged directory must fingerprint identically")
}

func TestDirectoryFingerprintSensitivity(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "description.txt", "original content")

	before, err := DirectoryFingerprint(root, nil)
	require.NoError(t, err)

	t.Run("changed file size changes the digest", func(t *testing.T) {
		writeFile(t, root, "description.txt", "longer replacement content")
		after, err := DirectoryFingerprint(root, nil)
		require.NoError(t, err)
		assert.NotEqual(t, before, after)
	})

	t.Run("added file changes the digest", func(t *testing.T) {
		current, err := DirectoryFingerprint(root, nil)
		require.NoError(t, err)

		writeFile(t, root, "extra.txt", "new file")
		after, err := DirectoryFingerprint(root, nil)
		require.NoError(t, err)
		assert.NotEqual(t, current, after)
	})

	t.Run("renamed file changes the digest", func(t *testing.T) {
		current, err := DirectoryFingerprint(root, nil)
		require.NoError(t, err)

		require.NoError(t, os.Rename(
			filepath.Join(root, "extra.txt"), filepath.Join(root, "renamed.txt")))
		after, err := DirectoryFingerprint(root, nil)
		require.NoError(t, err)
		assert.NotEqual(t, current, after)
	})
}

func TestDirectoryFingerprintIgnoresArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "code/main.py", "print('hello')\n")

	base, err := DirectoryFingerprint(root, nil)
	require.NoError(t, err)

	writeFile(t, root, "code/__pycache__/main.cpython-312.pyc", "bytecode")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, "run.log", "noise")
	writeFile(t, root, "scratch.tmp", "noise")

	after, err := DirectoryFingerprint(root, nil)
	require.NoError(t, err)
	assert.Equal(t, base, after, "build caches, VCS metadata, logs, and temp files never contribute")
}

func TestDirectoryFingerprintIncludeSuffixes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print('hello')\n")
	writeFile(t, root, "notes.md", "irrelevant")

	base, err := DirectoryFingerprint(root, []string{".py"})
	require.NoError(t, err)

	writeFile(t, root, "notes.md", "changed but excluded by the suffix filter")
	after, err := DirectoryFingerprint(root, []string{".py"})
	require.NoError(t, err)
	assert.Equal(t, base, after)

	writeFile(t, root, "second.py", "print('world')\n")
	withNewSource, err := DirectoryFingerprint(root, []string{".py"})
	require.NoError(t, err)
	assert.NotEqual(t, base, withNewSource)
}

func TestDirectoryFingerprintEmptyDirectory(t *testing.T) {
	first, err := DirectoryFingerprint(t.TempDir(), nil)
	require.NoError(t, err)

	second, err := DirectoryFingerprint(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second, "empty directories share the digest of no contributions")
}
