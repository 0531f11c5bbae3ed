package core

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/types"
)

// dependencyTags are the package.xml elements followed when collecting the
// packages a build needs.
var dependencyTags = map[string]struct{}{
	"depend":              {},
	"build_depend":        {},
	"buildtool_depend":    {},
	"run_depend":          {},
	"exec_depend":         {},
	"build_export_depend": {},
	"test_depend":         {},
}

type releaseXML struct {
	Children []releaseElement `xml:",any"`
}

type releaseElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
}

// DependencyWalker follows package dependencies through the released
// package.xml files of a distribution cache.
type DependencyWalker struct {
	Cache types.DistributionCache
	Env   ConditionEnv
}

func NewDependencyWalker(cache types.DistributionCache, env ConditionEnv) DependencyWalker {
	if env == nil {
		env = NoeticConditionEnv()
	}
	return DependencyWalker{Cache: cache, Env: env}
}

// Tags returns the released package.xml children of pkg whose element name
// is in tags. A package absent from the cache has no tags.
func (w DependencyWalker) Tags(pkg string, tags map[string]struct{}) ([]types.DependencyTag, error) {
	raw, ok := w.Cache.ReleasePackageXMLs[pkg]
	if !ok {
		return nil, nil
	}
	var doc releaseXML
	if err := xml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse released package.xml of %s", pkg)).
			WithCause(err)
	}
	var result []types.DependencyTag
	for _, child := range doc.Children {
		if _, want := tags[child.XMLName.Local]; !want {
			continue
		}
		attrib := map[string]string{}
		for _, attr := range child.Attrs {
			attrib[attr.Name.Local] = attr.Value
		}
		result = append(result, types.DependencyTag{
			Tag:    child.XMLName.Local,
			Name:   strings.TrimSpace(child.Text),
			Attrib: attrib,
		})
	}
	return result, nil
}

// PackageVersion returns the released version of pkg.
func (w DependencyWalker) PackageVersion(pkg string) (string, bool) {
	tags, err := w.Tags(pkg, map[string]struct{}{"version": {}})
	if err != nil || len(tags) == 0 || tags[0].Name == "" {
		return "", false
	}
	return tags[0].Name, true
}

// Direct returns the dependency keys pkg declares for this distribution:
// entries whose condition does not hold are dropped, and unmet version
// bounds are reported as warnings.
func (w DependencyWalker) Direct(ctx context.Context, pkg string) ([]string, error) {
	tags, err := w.Tags(pkg, dependencyTags)
	if err != nil {
		return nil, err
	}
	set := map[string]struct{}{}
	for _, dep := range tags {
		if dep.Name == "" {
			continue
		}
		if !w.keep(ctx, pkg, dep) {
			continue
		}
		set[dep.Name] = struct{}{}
	}
	return sortedKeys(set), nil
}

// Walk returns the transitive dependency closure of targets, excluding the
// targets themselves unless another package depends on them.
func (w DependencyWalker) Walk(ctx context.Context, targets []string) ([]string, error) {
	visited := map[string]struct{}{}
	expanded := map[string]struct{}{}
	queue := append([]string(nil), targets...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, done := expanded[current]; done {
			continue
		}
		expanded[current] = struct{}{}
		direct, err := w.Direct(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, dep := range direct {
			visited[dep] = struct{}{}
			if _, done := expanded[dep]; !done {
				queue = append(queue, dep)
			}
		}
	}
	log.Ctx(ctx).Debug().
		Strs("targets", targets).
		Int("dependencies", len(visited)).
		Msg("dependency walk complete")
	return sortedKeys(visited), nil
}

func (w DependencyWalker) keep(ctx context.Context, pkg string, dep types.DependencyTag) bool {
	logger := log.Ctx(ctx)
	for key, value := range dep.Attrib {
		switch key {
		case "condition":
			result, ok := EvaluateCondition(value, w.Env)
			if !ok {
				logger.Warn().
					Str("package", pkg).
					Str("dependency", dep.Name).
					Str("condition", value).
					Msg("unsupported condition; keeping dependency")
				continue
			}
			if !result {
				return false
			}
		case "version_gte", "version_gt", "version_lte", "version_lt", "version_eq":
			w.checkVersion(ctx, pkg, dep.Name, key, value)
		default:
			logger.Warn().
				Str("package", pkg).
				Str("dependency", dep.Name).
				Str("attribute", key).
				Str("value", value).
				Msg("unknown dependency attribute")
		}
	}
	return true
}

func (w DependencyWalker) checkVersion(ctx context.Context, pkg string, dep string, bound string, required string) {
	released, ok := w.PackageVersion(dep)
	if !ok {
		return
	}
	releasedVersion, err := pep440.Parse(released)
	if err != nil {
		log.Ctx(ctx).Debug().Str("dependency", dep).Str("version", released).Msg("unparseable released version")
		return
	}
	requiredVersion, err := pep440.Parse(required)
	if err != nil {
		log.Ctx(ctx).Debug().Str("dependency", dep).Str("version", required).Msg("unparseable required version")
		return
	}
	if VersionBoundSatisfied(releasedVersion, bound, requiredVersion) {
		return
	}
	log.Ctx(ctx).Warn().
		Str("package", pkg).
		Str("dependency", dep).
		Str("bound", bound).
		Str("required", required).
		Str("released", released).
		Msg("released dependency does not satisfy version bound")
}

// VersionBoundSatisfied reports whether released meets a package.xml
// version attribute (version_gte, version_gt, ...) against required.
func VersionBoundSatisfied(released pep440.Version, bound string, required pep440.Version) bool {
	cmp := released.Compare(required)
	switch bound {
	case "version_gte":
		return cmp >= 0
	case "version_gt":
		return cmp > 0
	case "version_lte":
		return cmp <= 0
	case "version_lt":
		return cmp < 0
	case "version_eq":
		return cmp == 0
	default:
		return true
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
