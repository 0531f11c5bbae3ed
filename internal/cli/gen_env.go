package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"noetic-jammy/internal/app"
)

type genEnvOptions struct {
	Targets       []string
	OutputDir     string
	CacheDir      string
	FarmConfig    string
	RosdistroURL  string
	BuilderBinary string
}

func newGenEnvCommand() *cobra.Command {
	opts := genEnvOptions{}
	cmd := &cobra.Command{
		Use:   "gen-env",
		Short: "Generate the Dockerfile, Makefile and rosdep.yaml of a build image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenEnv(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Targets, "target", nil, "Target packages (default from farm config, else desktop)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "docker", "Directory for generated files")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "cache", "Download cache directory")
	cmd.Flags().StringVar(&opts.FarmConfig, "farm-config", "", "Farm config yaml")
	cmd.Flags().StringVar(&opts.RosdistroURL, "rosdistro-url", "", "Base url of the rosdistro repository")
	cmd.Flags().StringVar(&opts.BuilderBinary, "builder-binary", "", "Build binary copied into the image (defaults to the running binary)")
	_ = viper.BindPFlag("targets", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("env_output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("farm_config", cmd.Flags().Lookup("farm-config"))
	_ = viper.BindPFlag("rosdistro_url", cmd.Flags().Lookup("rosdistro-url"))
	_ = viper.BindPFlag("builder_binary", cmd.Flags().Lookup("builder-binary"))
	return cmd
}

func runGenEnv(ctx context.Context, cmd *cobra.Command, opts genEnvOptions) error {
	service := newAppService()
	result, err := service.GenerateEnv(ctx, app.GenerateEnvRequest{
		Targets:        resolveStrings(cmd, opts.Targets, "targets", "target"),
		OutputDir:      resolveString(cmd, opts.OutputDir, "env_output", "output"),
		CacheDir:       resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir"),
		FarmConfigPath: resolveString(cmd, opts.FarmConfig, "farm_config", "farm-config"),
		RosdistroURL:   resolveString(cmd, opts.RosdistroURL, "rosdistro_url", "rosdistro-url"),
		BuilderBinary:  resolveString(cmd, opts.BuilderBinary, "builder_binary", "builder-binary"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "targets: %s\n", strings.Join(result.Targets, ", "))
	fmt.Fprintf(out, "build packages: %d\n", len(result.BuildPackages))
	fmt.Fprintf(out, "apt packages: %d\n", len(result.AptPackages))
	for _, file := range result.Files {
		fmt.Fprintf(out, "wrote: %s\n", file)
	}
	return nil
}
