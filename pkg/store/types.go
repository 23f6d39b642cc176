// Package store talks to the Shopware Community Store account API.
package store

// Locale is one of the store's supported changelog languages, e.g. "de_DE".
type Locale struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Changelog is the release note of a binary in a single locale. The store
// creates one entry per supported locale on every binary; we only ever fill
// in the text.
type Changelog struct {
	ID     int    `json:"id,omitempty"`
	Locale Locale `json:"locale"`
	Text   string `json:"text"`
}

// SoftwareVersion is a Shopware release the store knows about. Only versions
// with Selectable set can be picked as compatibility targets.
type SoftwareVersion struct {
	ID         int    `json:"id,omitempty"`
	Name       string `json:"name"`
	Selectable bool   `json:"selectable"`
}

// Binary is one uploaded plugin artifact. A binary the store pre-created for
// a plugin that never had a release carries an empty version string.
type Binary struct {
	ID                         int               `json:"id"`
	Version                    string            `json:"version"`
	Changelogs                 []Changelog       `json:"changelogs"`
	CompatibleSoftwareVersions []SoftwareVersion `json:"compatibleSoftwareVersions"`
	CreationDate               string            `json:"creationDate,omitempty"`
}

// REVIEW_APPROVED is the store's canonical status name for a passed review.
// The comparison is exact; anything else ("waitingforcodereview",
// "codereviewfailed", ...) means the binary is not released.
const REVIEW_APPROVED = "approved"

// ReviewStatus wraps the store's enumerated review status name.
type ReviewStatus struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

type Review struct {
	ID           int          `json:"id"`
	Status       ReviewStatus `json:"status"`
	Comment      string       `json:"comment"`
	CreationDate string       `json:"creationDate,omitempty"`
}

// Addon is a feature toggle on a plugin, e.g. partial ionCube encryption.
type Addon struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Plugin is the store-side record of a plugin, including its uploaded
// binaries and the reviews run against them. Mutating API calls return a
// fresh snapshot; the most recently touched binary comes back as LatestBinary.
type Plugin struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Addons       []Addon  `json:"addons,omitempty"`
	Binaries     []Binary `json:"binaries,omitempty"`
	Reviews      []Review `json:"reviews,omitempty"`
	LatestBinary *Binary  `json:"latestBinary,omitempty"`
}

// LatestReview returns the most recently appended review, or nil if the
// plugin was never submitted for one. The store appends in order, so the
// last element is the authoritative outcome of the last review request.
func (p *Plugin) LatestReview() *Review {
	if len(p.Reviews) == 0 {
		return nil
	}
	return &p.Reviews[len(p.Reviews)-1]
}

// HasAddon reports whether the plugin already carries the named addon.
func (p *Plugin) HasAddon(name string) bool {
	for _, a := range p.Addons {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Producer is the vendor account that owns the plugins.
type Producer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
