package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"noetic-jammy/internal/app"
	"noetic-jammy/internal/types"
)

type buildOptions struct {
	Repo           string
	Package        string
	OutputDir      string
	Jobs           int
	OSName         string
	OSVersion      string
	ROSDistro      string
	DropRunDepends []string
	AllowMissing   bool
	SkipInstall    bool
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build [repo_path pkg_name]",
		Short: "Patch, package, install and collect one ROS package",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Source tree to search for the package")
	cmd.Flags().StringVar(&opts.Package, "package", "", "ROS package name")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", types.DefaultOutputDir, "Directory receiving built .deb files")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "Compile parallelism (0 uses all CPUs)")
	cmd.Flags().StringVar(&opts.OSName, "os-name", types.DefaultOSName, "Target OS name")
	cmd.Flags().StringVar(&opts.OSVersion, "os-version", types.DefaultOSVersion, "Target OS release")
	cmd.Flags().StringVar(&opts.ROSDistro, "ros-distro", types.DefaultROSDistro, "ROS distribution")
	cmd.Flags().StringSliceVar(&opts.DropRunDepends, "drop-run-depend", types.DefaultDroppedRunDepends(), "Run dependency removed from package.xml")
	cmd.Flags().BoolVar(&opts.AllowMissing, "allow-missing", false, "Succeed without building when the package is not found")
	cmd.Flags().BoolVar(&opts.SkipInstall, "skip-install", false, "Do not install built packages locally")

	bindPackageFlags(cmd)
	_ = viper.BindPFlag("output_dir", cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("jobs", cmd.Flags().Lookup("jobs"))
	_ = viper.BindPFlag("os_name", cmd.Flags().Lookup("os-name"))
	_ = viper.BindPFlag("os_version", cmd.Flags().Lookup("os-version"))
	_ = viper.BindPFlag("ros_distro", cmd.Flags().Lookup("ros-distro"))
	_ = viper.BindPFlag("skip_install", cmd.Flags().Lookup("skip-install"))

	return cmd
}

// bindPackageFlags binds the flags shared by build and patch.
func bindPackageFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("repo", cmd.Flags().Lookup("repo"))
	_ = viper.BindPFlag("package", cmd.Flags().Lookup("package"))
	_ = viper.BindPFlag("drop_run_depends", cmd.Flags().Lookup("drop-run-depend"))
	_ = viper.BindPFlag("allow_missing", cmd.Flags().Lookup("allow-missing"))
}

// packageArgs resolves repo and package from flags, falling back to the
// positional form `<repo_path> <pkg_name>`.
func packageArgs(cmd *cobra.Command, args []string, repo string, pkg string) (string, string) {
	repo = resolveString(cmd, repo, "repo", "repo")
	pkg = resolveString(cmd, pkg, "package", "package")
	if len(args) > 0 && !flagChanged(cmd, "repo") {
		repo = args[0]
	}
	if len(args) > 1 && !flagChanged(cmd, "package") {
		pkg = args[1]
	}
	return repo, pkg
}

func runBuild(ctx context.Context, cmd *cobra.Command, args []string, opts buildOptions) error {
	repo, pkg := packageArgs(cmd, args, opts.Repo, opts.Package)
	service := newAppService()
	result, err := service.Build(ctx, app.BuildRequest{
		RepoPath:       repo,
		PackageName:    pkg,
		OutputDir:      resolveString(cmd, opts.OutputDir, "output_dir", "output-dir"),
		Jobs:           resolveInt(cmd, opts.Jobs, "jobs", "jobs"),
		OSName:         resolveString(cmd, opts.OSName, "os_name", "os-name"),
		OSVersion:      resolveString(cmd, opts.OSVersion, "os_version", "os-version"),
		ROSDistro:      resolveString(cmd, opts.ROSDistro, "ros_distro", "ros-distro"),
		DropRunDepends: resolveStrings(cmd, opts.DropRunDepends, "drop_run_depends", "drop-run-depend"),
		AllowMissing:   resolveBool(cmd, opts.AllowMissing, "allow_missing", "allow-missing"),
		SkipInstall:    resolveBool(cmd, opts.SkipInstall, "skip_install", "skip-install"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !result.Found {
		fmt.Fprintf(out, "package %s not found in %s; nothing built\n", pkg, repo)
		return nil
	}
	for _, artifact := range result.Artifacts {
		fmt.Fprintf(out, "built: %s\n", artifact)
	}
	return nil
}
