package release

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/VIISON/scs-commander/pkg/plugin"
	"github.com/VIISON/scs-commander/pkg/store"
)

// The store rejects changelog texts under a minimum visible length. Twenty
// trailing non-breaking spaces clear that check for any text, including an
// empty one, without changing what readers see.
const (
	CHANGELOG_PAD_CHAR  = " "
	CHANGELOG_PAD_COUNT = 20
)

// LanguageOf returns the language prefix of a store locale name, i.e. "de"
// for "de_DE". A locale without a region qualifier is returned unchanged.
func LanguageOf(locale string) string {
	if i := strings.IndexAny(locale, "_-"); i >= 0 {
		return locale[:i]
	}
	return locale
}

// PadChangelog appends the store-validation padding to a changelog text.
// Always applied, also to texts that are already long enough, so the saved
// text is deterministic.
func PadChangelog(text string) string {
	return text + strings.Repeat(CHANGELOG_PAD_CHAR, CHANGELOG_PAD_COUNT)
}

// findConflictingBinary returns the first binary whose non-empty version is
// semantically equal to the release version, or nil. Placeholder binaries
// (empty version) never conflict.
func findConflictingBinary(binaries []store.Binary, version *semver.Version) *store.Binary {
	for i := range binaries {
		if binaries[i].Version == "" {
			continue
		}
		v, err := semver.NewVersion(binaries[i].Version)
		if err != nil {
			continue
		}
		if v.Equal(version) {
			return &binaries[i]
		}
	}
	return nil
}

// findPlaceholderBinary returns the first binary the store pre-created
// without a version, or nil. Such a record takes the staged payload directly
// instead of a fresh upload.
func findPlaceholderBinary(binaries []store.Binary) *store.Binary {
	for i := range binaries {
		if binaries[i].Version == "" {
			return &binaries[i]
		}
	}
	return nil
}

// resolveChangelogs fills each store-defined changelog entry with the
// descriptor's text for the entry's language and applies the padding. The
// store decides which locales exist; a language the descriptor doesn't cover
// gets an empty padded text plus a warning.
func resolveChangelogs(entries []store.Changelog, notes map[string]string) ([]store.Changelog, []Warning) {
	resolved := make([]store.Changelog, len(entries))
	var warnings []Warning

	for i, entry := range entries {
		language := LanguageOf(entry.Locale.Name)
		text, ok := notes[language]
		if !ok {
			warnings = append(warnings, Warning{
				Kind:   WarnMissingChangelog,
				Locale: entry.Locale.Name,
				Message: fmt.Sprintf("the changelog has no %q notes, the %s entry will be empty",
					language, entry.Locale.Name),
			})
		}
		entry.Text = PadChangelog(text)
		resolved[i] = entry
	}

	return resolved, warnings
}

// compatibleVersions filters the store's Shopware versions down to those
// that are currently selectable and inside the descriptor's compatibility
// range. Order is preserved.
func compatibleVersions(versions []store.SoftwareVersion, desc *plugin.Descriptor) []store.SoftwareVersion {
	var compatible []store.SoftwareVersion
	for _, v := range versions {
		if v.Selectable && desc.Compatible(v.Name) {
			compatible = append(compatible, v)
		}
	}
	return compatible
}
