package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/types"
)

// Classify splits dependency keys into rosdep system keys, rosdep python
// keys and the ROS packages that have to be built from source.
func Classify(keys []string, base types.RosdepDB, python types.RosdepDB) types.DependencyClasses {
	var classes types.DependencyClasses
	for _, key := range keys {
		_, isBase := base[key]
		_, isPython := python[key]
		if isBase {
			classes.Base = append(classes.Base, key)
		}
		if isPython {
			classes.Python = append(classes.Python, key)
		}
		if !isBase && !isPython {
			classes.Build = append(classes.Build, key)
		}
	}
	sort.Strings(classes.Base)
	sort.Strings(classes.Python)
	sort.Strings(classes.Build)
	return classes
}

// AptPackageNames maps rosdep keys to Ubuntu package names for codename.
// A rule is either a plain list or a per-release map with an optional "*"
// fallback; keys installed through other installers (pip) are skipped with
// a warning.
func AptPackageNames(ctx context.Context, keys []string, db types.RosdepDB, osName string, codename string) []string {
	logger := log.Ctx(ctx)
	names := map[string]struct{}{}
	for _, key := range keys {
		rule, ok := db[key][osName]
		if !ok {
			logger.Warn().Str("key", key).Str("os", osName).Msg("rosdep key has no rule for os")
			continue
		}
		var selected any
		switch value := rule.(type) {
		case map[string]any:
			if release, ok := value[codename]; ok {
				selected = release
			} else if fallback, ok := value["*"]; ok {
				selected = fallback
			} else if _, ok := value["packages"]; ok {
				selected = value
			} else {
				logger.Warn().Str("key", key).Str("codename", codename).Msg("package names not found for release")
				continue
			}
		default:
			selected = value
		}
		resolved, ok := ruleNames(selected)
		if !ok {
			logger.Warn().Str("key", key).Str("rule", fmt.Sprintf("%v", selected)).Msg("unknown package name format")
			continue
		}
		for _, name := range resolved {
			names[name] = struct{}{}
		}
	}
	return sortedKeys(names)
}

func ruleNames(rule any) ([]string, bool) {
	switch value := rule.(type) {
	case nil:
		return nil, true
	case string:
		return []string{value}, true
	case []any:
		var names []string
		for _, item := range value {
			name, ok := item.(string)
			if !ok {
				return nil, false
			}
			names = append(names, name)
		}
		return names, true
	case []string:
		return value, true
	case map[string]any:
		if packages, ok := value["packages"]; ok {
			return ruleNames(packages)
		}
		if apt, ok := value["apt"]; ok {
			return ruleNames(apt)
		}
		return nil, false
	default:
		return nil, false
	}
}

// FindRepository returns the released repository providing pkg. A
// repository without an explicit package list releases a single package
// named after itself. Repositories are scanned in name order.
func FindRepository(cache types.DistributionCache, pkg string, overrides map[string]types.RepositoryOverride) (types.SourceRepository, error) {
	if len(cache.DistributionFile) == 0 {
		return types.SourceRepository{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("distribution cache has no distribution file")
	}
	repos := cache.DistributionFile[0].Repositories
	names := make([]string, 0, len(repos))
	for name := range repos {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		repo := repos[name]
		packages := []string{name}
		if repo.Release != nil && len(repo.Release.Packages) > 0 {
			packages = repo.Release.Packages
		}
		if !containsString(packages, pkg) {
			continue
		}
		if repo.Source == nil || repo.Source.URL == "" {
			return types.SourceRepository{}, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("repository %s of package %s has no source entry", name, pkg))
		}
		source := types.SourceRepository{
			Name:      name,
			URL:       repo.Source.URL,
			Branch:    repo.Source.Version,
			Recursive: true,
		}
		if override, ok := overrides[name]; ok {
			if override.URL != "" {
				source.URL = override.URL
			}
			if override.Branch != "" {
				source.Branch = override.Branch
			}
		}
		return source, nil
	}
	return types.SourceRepository{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no released repository provides %s", pkg))
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
