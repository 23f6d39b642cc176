package release

import (
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/VIISON/scs-commander/pkg/plugin"
	"github.com/VIISON/scs-commander/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPaddingConstants(t *testing.T) {
	// The store's length validation is cleared with no-break spaces, not
	// regular ones. An accidental U+0020 here would break every release.
	require.Equal(t, " ", CHANGELOG_PAD_CHAR)
	require.Equal(t, 20, CHANGELOG_PAD_COUNT)
}

func TestLanguageOf(t *testing.T) {
	cases := []struct {
		locale string
		want   string
	}{
		{"de_DE", "de"},
		{"en_GB", "en"},
		{"pt-BR", "pt"},
		{"de", "de"},
		{"", ""},
		{"_DE", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LanguageOf(c.locale), "LanguageOf(%q)", c.locale)
	}
}

func TestPadChangelogProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		padded := PadChangelog(text)

		require.True(t, strings.HasPrefix(padded, text), "padding must only append")

		runes := []rune(padded)
		require.Len(t, runes, len([]rune(text))+CHANGELOG_PAD_COUNT)
		for _, r := range runes[len(runes)-CHANGELOG_PAD_COUNT:] {
			require.Equal(t, ' ', r, "trailing padding must be no-break spaces")
		}

		// Applied unconditionally: padding again still appends a full block.
		require.Len(t, []rune(PadChangelog(padded)), len(runes)+CHANGELOG_PAD_COUNT)
	})
}

func TestResolveChangelogs(t *testing.T) {
	entries := []store.Changelog{
		{ID: 11, Locale: store.Locale{ID: 1, Name: "de_DE"}},
		{ID: 12, Locale: store.Locale{ID: 2, Name: "en_GB"}},
	}
	notes := map[string]string{"de": "Neues Feature"}

	resolved, warnings := resolveChangelogs(entries, notes)

	require.Len(t, resolved, 2)
	assert.Equal(t, 11, resolved[0].ID)
	assert.Equal(t, PadChangelog("Neues Feature"), resolved[0].Text)
	assert.Equal(t, 12, resolved[1].ID)
	assert.Equal(t, PadChangelog(""), resolved[1].Text, "a missing language still gets the padded empty text")

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnMissingChangelog, warnings[0].Kind)
	assert.Equal(t, "en_GB", warnings[0].Locale)
	assert.Contains(t, warnings[0].Message, `"en"`)

	// The input entries stay untouched.
	assert.Empty(t, entries[0].Text)
	assert.Empty(t, entries[1].Text)
}

func TestResolveChangelogsProperties(t *testing.T) {
	languages := []string{"de", "en", "fr", "nl"}
	regions := map[string]string{"de": "DE", "en": "GB", "fr": "FR", "nl": "NL"}

	rapid.Check(t, func(t *rapid.T) {
		entryLangs := rapid.SliceOfDistinct(
			rapid.SampledFrom(languages),
			func(s string) string { return s },
		).Draw(t, "entryLangs")

		var entries []store.Changelog
		for i, lang := range entryLangs {
			entries = append(entries, store.Changelog{
				ID:     i + 1,
				Locale: store.Locale{Name: lang + "_" + regions[lang]},
			})
		}

		notes := map[string]string{}
		for _, lang := range languages {
			if rapid.Bool().Draw(t, "has_"+lang) {
				notes[lang] = rapid.StringMatching(`[a-zA-Z ]{0,40}`).Draw(t, "note_"+lang)
			}
		}

		resolved, warnings := resolveChangelogs(entries, notes)
		require.Len(t, resolved, len(entries))

		missing := 0
		for i, entry := range resolved {
			text, ok := notes[LanguageOf(entry.Locale.Name)]
			if !ok {
				missing++
			}
			assert.Equal(t, PadChangelog(text), entry.Text)
			assert.Equal(t, entries[i].ID, entry.ID, "entry identity must survive resolution")
		}
		assert.Len(t, warnings, missing, "exactly one warning per store locale without notes")
	})
}

func TestCompatibleVersions(t *testing.T) {
	rng, err := semver.NewConstraint(">= 5.2.0, <= 5.7.99")
	require.NoError(t, err)
	desc := &plugin.Descriptor{Name: "SwagExample", Version: "1.0.0", Compatibility: rng}

	// 5.1.6 and 6.0.0 fall outside the range, 5.5.0 is not selectable, and
	// both bounds are inclusive.
	versions := []store.SoftwareVersion{
		{Name: "5.1.6", Selectable: true},
		{Name: "5.2.0", Selectable: true},
		{Name: "5.5.0", Selectable: false},
		{Name: "5.7.99", Selectable: true},
		{Name: "6.0.0", Selectable: true},
	}

	got := compatibleVersions(versions, desc)
	assert.Equal(t, []store.SoftwareVersion{versions[1], versions[3]}, got)
}

func TestCompatibleVersionsWithoutRange(t *testing.T) {
	desc := &plugin.Descriptor{Name: "SwagExample", Version: "1.0.0"}

	versions := []store.SoftwareVersion{
		{Name: "5.6.10", Selectable: true},
		{Name: "6.0.0", Selectable: false},
	}

	got := compatibleVersions(versions, desc)
	assert.Equal(t, []store.SoftwareVersion{versions[0]}, got, "without a range only selectability filters")
}

func TestFindConflictingBinary(t *testing.T) {
	binaries := []store.Binary{
		{ID: 1, Version: ""}, // store placeholder, never conflicts
		{ID: 2, Version: "1.1.0"},
		{ID: 3, Version: "not-a-version"},
		{ID: 4, Version: "1.2"},
	}

	got := findConflictingBinary(binaries, semver.MustParse("1.2.0"))
	require.NotNil(t, got)
	assert.Equal(t, 4, got.ID, `"1.2" and "1.2.0" are the same version`)

	assert.Nil(t, findConflictingBinary(binaries, semver.MustParse("2.0.0")))
	assert.Nil(t, findConflictingBinary(nil, semver.MustParse("1.0.0")))
}

func TestFindPlaceholderBinary(t *testing.T) {
	binaries := []store.Binary{
		{ID: 2, Version: "1.1.0"},
		{ID: 5, Version: ""},
		{ID: 6, Version: ""},
	}

	got := findPlaceholderBinary(binaries)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.ID, "the first placeholder wins")

	assert.Nil(t, findPlaceholderBinary(binaries[:1]))
}
