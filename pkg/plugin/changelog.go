package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/VIISON/scs-commander/internal/utils"
)

var (
	ErrChangelogNotFound       = errors.New("no changelog in archive")
	ErrChangelogVersionMissing = errors.New("changelog has no entry for the release version")
)

// ChangelogSection holds the release notes of one version, per language.
type ChangelogSection struct {
	Version string
	Notes   map[string]string
}

// ReadChangelog extracts the release notes for the given version from the
// archive's CHANGELOG.md. The heading is matched by semantic-version
// equality, so "# 1.2" serves a "1.2.0" release. The returned map is keyed
// by language code ("de", "en").
func ReadChangelog(archivePath, version string) (map[string]string, error) {
	required, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("version %q is not a semantic version: %v", version, err)
	}

	r, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entry := findEntry(&r.Reader, CHANGELOG_FILE)
	if entry == nil {
		return nil, fmt.Errorf("%w: expected <PluginName>/%s in %s",
			ErrChangelogNotFound, CHANGELOG_FILE, archivePath)
	}

	data, err := readEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", entry.Name, err)
	}

	for _, section := range ParseChangelog(data) {
		v, err := semver.NewVersion(section.Version)
		if err != nil {
			utils.Log.Debugf("Skipping changelog heading %q: not a version", section.Version)
			continue
		}
		if v.Equal(required) {
			return section.Notes, nil
		}
	}

	return nil, fmt.Errorf("%w: no \"# %s\" heading in %s", ErrChangelogVersionMissing, version, CHANGELOG_FILE)
}

// ParseChangelog splits a changelog document into its version sections, in
// document order. The expected shape is a "# <version>" heading per release
// with "## <language>" subsections holding the notes:
//
//	# 1.2.0
//	## en
//	- Added CSV export
//	## de
//	- CSV-Export hinzugefügt
func ParseChangelog(data []byte) []ChangelogSection {
	var sections []ChangelogSection
	current := -1
	language := ""
	var body []string

	flushLanguage := func() {
		if current >= 0 && language != "" {
			text := strings.TrimSpace(strings.Join(body, "\n"))
			if text != "" {
				sections[current].Notes[language] = text
			}
		}
		body = nil
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(trimmed, "## "):
			flushLanguage()
			language = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "# "):
			flushLanguage()
			language = ""
			sections = append(sections, ChangelogSection{
				Version: strings.TrimSpace(strings.TrimPrefix(trimmed, "# ")),
				Notes:   map[string]string{},
			})
			current = len(sections) - 1
		default:
			body = append(body, trimmed)
		}
	}
	flushLanguage()

	return sections
}
