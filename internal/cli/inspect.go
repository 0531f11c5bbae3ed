package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"noetic-jammy/internal/app"
	"noetic-jammy/internal/types"
)

type inspectOptions struct {
	Dir     string
	Package string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List built packages and their control metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Dir, "dir", types.DefaultOutputDir, "Directory holding .deb files")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Only show this package (ROS or Debian name)")
	_ = viper.BindPFlag("inspect_dir", cmd.Flags().Lookup("dir"))
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(ctx, app.InspectRequest{
		Dir:     resolveString(cmd, opts.Dir, "inspect_dir", "dir"),
		Package: opts.Package,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d packages\n", result.Dir, len(result.Artifacts))
	for _, artifact := range result.Artifacts {
		control := artifact.Control
		fmt.Fprintf(out, "- %s %s (%s)\n", control.Package, control.Version, control.Architecture)
		if len(control.Depends) > 0 {
			fmt.Fprintf(out, "  depends: %s\n", strings.Join(control.Depends, ", "))
		}
	}
	return nil
}
