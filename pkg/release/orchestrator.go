// Package release drives a single plugin release against the store: it
// resolves version conflicts, stages the binary payload, assembles changelog
// and compatibility metadata, commits the record, and optionally walks the
// binary through the store's review to publication.
package release

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/VIISON/scs-commander/pkg/plugin"
	"github.com/VIISON/scs-commander/pkg/store"
)

// StoreClient is the slice of the store API the orchestrator drives. Every
// mutating call returns a fresh authoritative plugin snapshot that replaces
// the previous one, so no stale state is carried between steps.
type StoreClient interface {
	FindPlugin(ctx context.Context, name string, expand []string) (*store.Plugin, error)
	EnablePartialEncryption(ctx context.Context, p *store.Plugin) (*store.Plugin, error)
	UploadBinary(ctx context.Context, p *store.Plugin, archivePath string) (*store.Plugin, error)
	UpdateBinary(ctx context.Context, p *store.Plugin, b *store.Binary, archivePath string) (*store.Plugin, error)
	SavePluginBinary(ctx context.Context, p *store.Plugin, b *store.Binary) (*store.Plugin, error)
	RequestBinaryReview(ctx context.Context, p *store.Plugin) (*store.Plugin, error)
	SoftwareVersions(ctx context.Context) ([]store.SoftwareVersion, error)
}

// Step identifies the pipeline stage about to run. Reported through
// Options.OnStep for progress rendering; has no influence on decisions.
type Step int

const (
	StepLookup Step = iota
	StepEncryption
	StepUpload
	StepReplace
	StepSave
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepLookup:
		return "Looking up the plugin"
	case StepEncryption:
		return "Enabling partial encryption"
	case StepUpload:
		return "Uploading the binary"
	case StepReplace:
		return "Replacing the binary"
	case StepSave:
		return "Saving release metadata"
	case StepReview:
		return "Requesting the store review"
	}
	return "Working"
}

// Options control a single release run.
type Options struct {
	// Force replaces an existing binary that already carries the release
	// version instead of failing with a VersionConflictError.
	Force bool

	// SkipReview stops after the binary is saved; the release then waits in
	// the store until it is submitted for review manually.
	SkipReview bool

	// PartialEncryption enables the store's partial ionCube encryption on
	// the plugin before the binary is staged.
	PartialEncryption bool

	// OnStep, when set, is called right before each store interaction.
	OnStep func(Step)
}

// Outcome is the terminal state of a successful release run.
type Outcome int

const (
	// OutcomePublished means the store approved the review and the release
	// is live.
	OutcomePublished Outcome = iota

	// OutcomeAwaitingRelease means the binary is saved but no review was
	// requested; someone still has to release it in the store.
	OutcomeAwaitingRelease
)

// WarningKind classifies non-fatal findings of a release run.
type WarningKind int

const (
	// WarnMissingChangelog: a store locale has no changelog text for this
	// release; the entry was saved empty.
	WarnMissingChangelog WarningKind = iota

	// WarnNoCompatibleVersions: no selectable Shopware version matches the
	// compatibility range; the release is live but installable nowhere.
	WarnNoCompatibleVersions
)

// Warning is a non-fatal finding. Warnings never change the control flow;
// they ride along on the Result so callers can log or test them.
type Warning struct {
	Kind    WarningKind
	Locale  string // set for WarnMissingChangelog
	Message string
}

// Result is the outcome of a successful release run.
type Result struct {
	Outcome  Outcome
	Plugin   *store.Plugin // last authoritative snapshot
	Binary   *store.Binary // the committed binary record
	Review   *store.Review // set when a review ran
	Warnings []Warning
}

// Orchestrator runs one release at a time against a store client. It holds
// no state between runs.
type Orchestrator struct {
	client StoreClient
}

func NewOrchestrator(client StoreClient) *Orchestrator {
	return &Orchestrator{client: client}
}

// Release publishes the archive described by desc. The pipeline is strictly
// sequential; the first failing step aborts the rest and its error is the
// outcome. A binary that was already saved stays saved even when a later
// step fails.
func (o *Orchestrator) Release(ctx context.Context, desc *plugin.Descriptor, archivePath string, opts Options) (*Result, error) {
	version, err := semver.NewVersion(desc.Version)
	if err != nil {
		return nil, fmt.Errorf("release version %q is not a semantic version: %v", desc.Version, err)
	}

	step := func(s Step) {
		if opts.OnStep != nil {
			opts.OnStep(s)
		}
	}

	step(StepLookup)
	p, err := o.client.FindPlugin(ctx, desc.Name, []string{"binaries", "reviews"})
	if err != nil {
		return nil, err
	}

	// Decided on the fetched data before anything mutates, so a conflict
	// that is going to be rejected leaves the store untouched.
	conflicting := findConflictingBinary(p.Binaries, version)
	if conflicting != nil && !opts.Force {
		return nil, &VersionConflictError{Plugin: desc.Name, Version: desc.Version}
	}

	if opts.PartialEncryption {
		step(StepEncryption)
		if p, err = o.client.EnablePartialEncryption(ctx, p); err != nil {
			return nil, err
		}
	}

	// Stage the payload. A version match (with force) or a store-created
	// placeholder is overwritten in place; otherwise a new binary is created.
	switch {
	case conflicting != nil:
		step(StepReplace)
		p, err = o.client.UpdateBinary(ctx, p, conflicting, archivePath)
	default:
		if placeholder := findPlaceholderBinary(p.Binaries); placeholder != nil {
			step(StepReplace)
			p, err = o.client.UpdateBinary(ctx, p, placeholder, archivePath)
		} else {
			step(StepUpload)
			p, err = o.client.UploadBinary(ctx, p, archivePath)
		}
	}
	if err != nil {
		return nil, err
	}
	if p.LatestBinary == nil {
		return nil, fmt.Errorf("the store did not report the staged binary for %s", desc.Name)
	}

	// From here on both staging paths look identical: assemble the metadata
	// on a copy of the staged record and commit it in one save.
	binary := *p.LatestBinary
	binary.Version = desc.Version

	changelogs, warnings := resolveChangelogs(binary.Changelogs, desc.Changelog)
	binary.Changelogs = changelogs

	versions, err := o.client.SoftwareVersions(ctx)
	if err != nil {
		return nil, err
	}
	binary.CompatibleSoftwareVersions = compatibleVersions(versions, desc)
	if len(binary.CompatibleSoftwareVersions) == 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnNoCompatibleVersions,
			Message: "no selectable Shopware version is inside the compatibility range, the release will be installable nowhere",
		})
	}

	step(StepSave)
	if p, err = o.client.SavePluginBinary(ctx, p, &binary); err != nil {
		return nil, err
	}

	result := &Result{Plugin: p, Binary: &binary, Warnings: warnings}

	if opts.SkipReview {
		result.Outcome = OutcomeAwaitingRelease
		return result, nil
	}

	step(StepReview)
	if p, err = o.client.RequestBinaryReview(ctx, p); err != nil {
		return nil, err
	}
	result.Plugin = p

	review := p.LatestReview()
	if review == nil {
		return nil, fmt.Errorf("the store returned no review for %s %s", desc.Name, desc.Version)
	}
	result.Review = review

	if review.Status.Name != store.REVIEW_APPROVED {
		return nil, &ReviewRejectedError{
			Plugin:  desc.Name,
			Version: desc.Version,
			Status:  review.Status.Name,
			Comment: review.Comment,
		}
	}

	result.Outcome = OutcomePublished
	return result, nil
}
