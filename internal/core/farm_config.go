package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/types"
)

// DefaultRosdistroURL is where the public ROS release index lives.
const DefaultRosdistroURL = "https://raw.githubusercontent.com/ros/rosdistro/master"

var supportedROSDistros = map[string]struct{}{
	types.DefaultROSDistro: {},
}

var supportedUbuntuDistros = map[string]struct{}{
	types.DefaultOSVersion: {},
}

// DefaultRepositoryOverrides are applied unless the farm config names the
// same repository.
func DefaultRepositoryOverrides() map[string]types.RepositoryOverride {
	return map[string]types.RepositoryOverride{
		"rosconsole": {
			URL:    "https://github.com/twdragon/rosconsole.git",
			Branch: "log4cxx-0.12",
			Reason: "liblog4cxx 0.12 API on jammy (ros/rosconsole#58)",
		},
	}
}

func DefaultFarmConfig() types.FarmConfig {
	return types.FarmConfig{
		Targets:             []string{"desktop"},
		ROSDistro:           types.DefaultROSDistro,
		UbuntuDistro:        types.DefaultOSVersion,
		RosdistroURL:        DefaultRosdistroURL,
		RepositoryOverrides: DefaultRepositoryOverrides(),
	}
}

// MergeFarmConfig fills unset fields of cfg from DefaultFarmConfig.
// Repository overrides are merged by name, cfg winning.
func MergeFarmConfig(cfg types.FarmConfig) types.FarmConfig {
	defaults := DefaultFarmConfig()
	if len(cfg.Targets) == 0 {
		cfg.Targets = defaults.Targets
	}
	if strings.TrimSpace(cfg.ROSDistro) == "" {
		cfg.ROSDistro = defaults.ROSDistro
	}
	if strings.TrimSpace(cfg.UbuntuDistro) == "" {
		cfg.UbuntuDistro = defaults.UbuntuDistro
	}
	if strings.TrimSpace(cfg.RosdistroURL) == "" {
		cfg.RosdistroURL = defaults.RosdistroURL
	}
	cfg.RosdistroURL = strings.TrimRight(cfg.RosdistroURL, "/")
	merged := defaults.RepositoryOverrides
	for name, override := range cfg.RepositoryOverrides {
		merged[name] = override
	}
	cfg.RepositoryOverrides = merged
	return cfg
}

type FarmConfigValidator struct{}

func NewFarmConfigValidator() FarmConfigValidator {
	return FarmConfigValidator{}
}

// Validate checks a merged farm config.
func (v FarmConfigValidator) Validate(ctx context.Context, cfg types.FarmConfig) error {
	assert.NotEmpty(ctx, cfg.ROSDistro, "ros_distro must be set")
	assert.NotEmpty(ctx, cfg.UbuntuDistro, "ubuntu_distro must be set")
	if len(cfg.Targets) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("targets must not be empty")
	}
	for _, target := range cfg.Targets {
		if strings.TrimSpace(target) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("targets must not contain empty names")
		}
	}
	if _, ok := supportedROSDistros[cfg.ROSDistro]; !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported ros_distro %s", cfg.ROSDistro))
	}
	if _, ok := supportedUbuntuDistros[cfg.UbuntuDistro]; !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported ubuntu_distro %s", cfg.UbuntuDistro))
	}
	if err := validateBaseURL(cfg.RosdistroURL); err != nil {
		return err
	}
	for name, override := range cfg.RepositoryOverrides {
		if strings.TrimSpace(override.URL) == "" && strings.TrimSpace(override.Branch) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("repository override %s sets neither url nor branch", name))
		}
	}
	log.Ctx(ctx).Debug().Strs("targets", cfg.Targets).Msg("farm config validated")
	return nil
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("rosdistro_url must be an http(s) url: %q", raw))
	}
	return nil
}
