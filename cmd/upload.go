package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/VIISON/scs-commander/internal/notify"
	"github.com/VIISON/scs-commander/internal/ui"
	"github.com/VIISON/scs-commander/internal/utils"
	"github.com/VIISON/scs-commander/pkg/plugin"
	"github.com/VIISON/scs-commander/pkg/release"
	"github.com/spf13/cobra"
)

// uploadCmd implements: scs-commander upload <plugin.zip>
//
// The archive decides everything: the technical name, the version, the
// changelog texts and the compatible Shopware versions all come out of the
// zip. The flags only steer how the release run behaves.
var uploadCmd = &cobra.Command{
	Use:   "upload <plugin.zip>",
	Short: "Upload a plugin binary and release it in the store",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: expected exactly one plugin archive, see 'scs-commander upload --help'", errUsage)
		}
		return nil
	},
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringP("username", "u", "", "Shopware ID used to log in (falls back to SCS_USERNAME)")
	uploadCmd.Flags().Bool("no-release", false, "Save the binary without requesting the store review")
	uploadCmd.Flags().BoolP("force", "f", false, "Replace an existing binary with the same version")
	uploadCmd.Flags().Bool("partial-encryption", false, "Allow partial ionCube encryption for the plugin before uploading")
	uploadCmd.Flags().Bool("no-notify", false, "Skip the desktop notification when the run finishes")
	uploadCmd.Flags().Bool("plain", false, "Log steps as plain lines instead of the live view")
}

func runUpload(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	desc, err := plugin.ReadDescriptor(archivePath)
	if err != nil {
		return err
	}
	desc.Changelog, err = plugin.ReadChangelog(archivePath, desc.Version)
	if err != nil {
		return err
	}

	client, err := newStoreClient(cmd)
	if err != nil {
		return err
	}
	username, password, err := credentials(cmd)
	if err != nil {
		return err
	}
	if err := client.Login(cmd.Context(), username, password); err != nil {
		return err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return err
	}
	fmt.Printf("Releasing %s %s (%s)\n", desc.Name, desc.Version, utils.FormatFileSize(info.Size()))

	force, _ := cmd.Flags().GetBool("force")
	noRelease, _ := cmd.Flags().GetBool("no-release")
	partialEncryption, _ := cmd.Flags().GetBool("partial-encryption")
	opts := release.Options{
		Force:             force,
		SkipReview:        noRelease,
		PartialEncryption: partialEncryption,
	}

	orch := release.NewOrchestrator(client)
	result, err := runPipeline(cmd, orch, desc, archivePath, opts)

	noNotify, _ := cmd.Flags().GetBool("no-notify")
	if err != nil {
		if !noNotify {
			notify.Failed(desc.Name, desc.Version, err)
		}
		return err
	}

	for _, w := range result.Warnings {
		utils.Log.Warn(w.Message)
	}

	switch result.Outcome {
	case release.OutcomePublished:
		fmt.Printf("✅ %s %s passed the review and is published in the store.\n", desc.Name, desc.Version)
		if !noNotify {
			notify.Published(desc.Name, desc.Version)
		}
	case release.OutcomeAwaitingRelease:
		fmt.Printf("📦 %s %s is saved in the store.\n", desc.Name, desc.Version)
		fmt.Println("No review was requested. Remember to release the binary in your account when you are ready.")
		if !noNotify {
			notify.AwaitingRelease(desc.Name, desc.Version)
		}
	}

	return nil
}

// runPipeline executes the release with either the live terminal view or, on
// --plain and non-interactive runs, plain log lines per step.
func runPipeline(cmd *cobra.Command, orch *release.Orchestrator, desc *plugin.Descriptor, archivePath string, opts release.Options) (*release.Result, error) {
	plain, _ := cmd.Flags().GetBool("plain")
	if plain || !utils.IsTerminal() {
		opts.OnStep = func(s release.Step) {
			utils.Log.Infof("%s...", s)
		}
		return orch.Release(cmd.Context(), desc, archivePath, opts)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	title := fmt.Sprintf("Releasing %s %s", desc.Name, desc.Version)
	return ui.RunRelease(title, cancel, func(onStep func(release.Step)) (*release.Result, error) {
		opts.OnStep = onStep
		return orch.Release(ctx, desc, archivePath, opts)
	})
}
