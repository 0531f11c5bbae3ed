package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"noetic-jammy/internal/app"
	"noetic-jammy/internal/types"
)

type patchOptions struct {
	Repo           string
	Package        string
	DropRunDepends []string
	AllowMissing   bool
}

func newPatchCommand() *cobra.Command {
	opts := patchOptions{}
	cmd := &cobra.Command{
		Use:   "patch [repo_path pkg_name]",
		Short: "Clean and rewrite a package's sources for Jammy without building",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Source tree to search for the package")
	cmd.Flags().StringVar(&opts.Package, "package", "", "ROS package name")
	cmd.Flags().StringSliceVar(&opts.DropRunDepends, "drop-run-depend", types.DefaultDroppedRunDepends(), "Run dependency removed from package.xml")
	cmd.Flags().BoolVar(&opts.AllowMissing, "allow-missing", false, "Succeed without changes when the package is not found")
	bindPackageFlags(cmd)
	return cmd
}

func runPatch(ctx context.Context, cmd *cobra.Command, args []string, opts patchOptions) error {
	repo, pkg := packageArgs(cmd, args, opts.Repo, opts.Package)
	service := newAppService()
	result, err := service.Patch(ctx, app.PatchRequest{
		RepoPath:       repo,
		PackageName:    pkg,
		DropRunDepends: resolveStrings(cmd, opts.DropRunDepends, "drop_run_depends", "drop-run-depend"),
		AllowMissing:   resolveBool(cmd, opts.AllowMissing, "allow_missing", "allow-missing"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !result.Found {
		fmt.Fprintf(out, "package %s not found in %s; nothing patched\n", pkg, repo)
		return nil
	}
	fmt.Fprintf(out, "package: %s (%s)\n", result.Manifest.Name, result.Manifest.Dir)
	for _, path := range result.Changed {
		fmt.Fprintf(out, "patched: %s\n", path)
	}
	return nil
}
