// Package plugin reads release information out of a plugin zip archive.
//
// A store-ready archive contains a single top-level directory named after
// the plugin, holding the manifest and the changelog:
//
//	SwagExample/
//	  plugin.json
//	  CHANGELOG.md
//	  ...
package plugin

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/gjson"
)

const (
	MANIFEST_FILE  = "plugin.json"
	CHANGELOG_FILE = "CHANGELOG.md"
)

var (
	ErrArchiveNotFound  = errors.New("plugin archive not found")
	ErrManifestNotFound = errors.New("no plugin manifest in archive")
)

// Descriptor is the release-relevant part of a plugin manifest. Immutable
// once loaded; Changelog is filled by ReadChangelog for the release version.
type Descriptor struct {
	Name    string
	Version string

	// Label maps a language code ("de", "en") to the plugin's display name.
	Label map[string]string

	// Changelog maps a language code to the release note for Version.
	Changelog map[string]string

	// Compatibility is the inclusive Shopware version range of the manifest;
	// nil accepts every version.
	Compatibility *semver.Constraints
}

// Compatible reports whether a Shopware version name satisfies the
// manifest's compatibility range. A manifest without a compatibility block
// accepts everything; version names that don't parse as semver never match.
func (d *Descriptor) Compatible(version string) bool {
	if d.Compatibility == nil {
		return true
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return d.Compatibility.Check(v)
}

// DisplayName returns the English label if the manifest has one, falling
// back to the technical name.
func (d *Descriptor) DisplayName() string {
	if label, ok := d.Label["en"]; ok && label != "" {
		return label
	}
	return d.Name
}

// ReadDescriptor loads the plugin manifest out of the archive. The plugin's
// technical name is the archive's top-level directory.
func ReadDescriptor(archivePath string) (*Descriptor, error) {
	r, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entry := findEntry(&r.Reader, MANIFEST_FILE)
	if entry == nil {
		return nil, fmt.Errorf("%w: expected <PluginName>/%s at the top level of %s",
			ErrManifestNotFound, MANIFEST_FILE, filepath.Base(archivePath))
	}
	name := strings.SplitN(entry.Name, "/", 2)[0]

	data, err := readEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", entry.Name, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s of %s is not valid JSON", MANIFEST_FILE, name)
	}

	version := gjson.GetBytes(data, "currentVersion").String()
	if version == "" {
		version = gjson.GetBytes(data, "version").String()
	}
	if version == "" {
		return nil, fmt.Errorf("%s of %s declares no version", MANIFEST_FILE, name)
	}
	if _, err := semver.NewVersion(version); err != nil {
		return nil, fmt.Errorf("version %q of %s is not a semantic version: %v", version, name, err)
	}

	d := &Descriptor{
		Name:      name,
		Version:   version,
		Changelog: map[string]string{},
	}

	if label := gjson.GetBytes(data, "label"); label.IsObject() {
		d.Label = map[string]string{}
		label.ForEach(func(key, value gjson.Result) bool {
			d.Label[key.String()] = value.String()
			return true
		})
	}

	min := gjson.GetBytes(data, "compatibility.minimumVersion").String()
	max := gjson.GetBytes(data, "compatibility.maximumVersion").String()
	d.Compatibility, err = compileCompatibility(min, max)
	if err != nil {
		return nil, fmt.Errorf("compatibility range of %s: %v", name, err)
	}

	return d, nil
}

// compileCompatibility turns the manifest's inclusive minimum/maximum
// Shopware versions into a constraint. Both bounds are optional.
func compileCompatibility(min, max string) (*semver.Constraints, error) {
	var parts []string
	if min != "" {
		parts = append(parts, ">= "+min)
	}
	if max != "" {
		parts = append(parts, "<= "+max)
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return semver.NewConstraint(strings.Join(parts, ", "))
}

func openArchive(archivePath string) (*zip.ReadCloser, error) {
	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, archivePath)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %v", archivePath, err)
	}
	return r, nil
}

// findEntry returns the archive entry named base directly below the
// top-level plugin directory, or nil.
func findEntry(r *zip.Reader, base string) *zip.File {
	for _, f := range r.File {
		parts := strings.Split(f.Name, "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] == base {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
