package plugin

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// writeArchive builds a plugin zip in a temp dir. Keys are archive entry
// names, values their contents.
func writeArchive(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plugin.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return path
}

const exampleManifest = `{
	"label": {
		"de": "Mein Beispiel",
		"en": "My Example"
	},
	"currentVersion": "1.2.0",
	"compatibility": {
		"minimumVersion": "5.2.0",
		"maximumVersion": "5.7.99"
	}
}`

const exampleChangelog = `# 1.2.0
## en
- Added CSV export
- Fixed order sync
## de
- CSV-Export hinzugefügt

# 1.1.0
## en
- First public release
`
