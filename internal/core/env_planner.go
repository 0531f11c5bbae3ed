package core

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/shared"
	"noetic-jammy/internal/types"
)

// pythonTooling lists the ros-infrastructure python packages built inside
// the image before rosdep can run, each with the tooling it needs first.
var pythonTooling = []struct {
	name    string
	depends []string
}{
	{name: "catkin_pkg"},
	{name: "rospkg", depends: []string{"catkin_pkg"}},
	{name: "rosdistro", depends: []string{"rospkg"}},
	{name: "rosdep", depends: []string{"rosdistro"}},
}

// Each python tooling package produces a python3 and a -modules deb.
const pythonToolingArtifacts = 8

const (
	releasePythonRepo = "ros_release_python"
	releasePythonBin  = "/usr/local/bin/ros_release_python"
	infrastructureURL = "https://github.com/ros-infrastructure"
)

// DefaultBuilder is the build binary name used when none is given.
const DefaultBuilder = "noetic-jammy"

// EnvLayout fixes the paths used inside the build image.
type EnvLayout struct {
	BuildDir    string
	DebDir      string
	StampDir    string
	RosdepYAML  string
	RosdepCache string
	RosdepList  string
	Builder     string
}

func DefaultEnvLayout(rosDistro string) EnvLayout {
	if rosDistro == "" {
		rosDistro = types.DefaultROSDistro
	}
	return EnvLayout{
		BuildDir:    fmt.Sprintf("/root/%s_build/src", rosDistro),
		DebDir:      types.DefaultOutputDir,
		StampDir:    "/tmp/built_packages",
		RosdepYAML:  "/root/rosdep.yaml",
		RosdepCache: "/root/.ros/rosdep/sources.cache",
		RosdepList:  "/etc/ros/rosdep/sources.list.d",
		Builder:     DefaultBuilder,
	}
}

// BuildPackage is a ROS package built from source inside the image.
type BuildPackage struct {
	Name    string
	Repo    types.SourceRepository
	Depends []string
}

// MakefileSection groups targets under a heading comment.
type MakefileSection struct {
	Title   string
	Targets []types.MakeTarget
}

// MakefilePlan is the ordered content of the generated Makefile.
type MakefilePlan struct {
	Variables []string
	Sections  []MakefileSection
}

// PlanMakefile lays out the build image Makefile: the aggregate target,
// stamp directories, rosdep bootstrap, python tooling and one clone plus
// build rule per package.
func PlanMakefile(ctx context.Context, layout EnvLayout, mainTargets []string, packages []BuildPackage) MakefilePlan {
	assert.NotEmpty(ctx, layout.BuildDir, "build dir must be set")
	plan := MakefilePlan{
		Variables: []string{fmt.Sprintf("BUILDER ?= %s", layout.Builder)},
	}

	mains := append([]string(nil), mainTargets...)
	sort.Strings(mains)
	plan.Sections = append(plan.Sections, MakefileSection{
		Title: "main target",
		Targets: []types.MakeTarget{{
			Target:  "all",
			Depends: mains,
			Commands: []string{
				fmt.Sprintf("@echo built packages : `ls -1 %s/* | wc -l` / %d", layout.DebDir, len(packages)+pythonToolingArtifacts),
			},
			Phony: true,
		}},
	})

	envDeps := []string{
		path.Join(layout.DebDir, ".touch"),
		path.Join(layout.StampDir, ".touch"),
		path.Join(layout.BuildDir, ".touch"),
	}
	envSection := MakefileSection{
		Title:   "build env",
		Targets: []types.MakeTarget{{Target: "env_targets", Depends: envDeps, Phony: true}},
	}
	for _, stamp := range envDeps {
		envSection.Targets = append(envSection.Targets, types.MakeTarget{
			Target:   stamp,
			Commands: []string{"mkdir -p $(shell dirname $@)", "touch $@"},
		})
	}
	plan.Sections = append(plan.Sections, envSection)

	toolSection := MakefileSection{
		Title: "python tools for build",
		Targets: []types.MakeTarget{
			{Target: "python_tools", Depends: []string{layout.RosdepCache}, Phony: true},
			{
				Target:   layout.RosdepList,
				Depends:  []string{stampPath(layout, "rosdep")},
				Commands: []string{"rosdep init"},
			},
			{
				Target:  layout.RosdepCache,
				Depends: []string{layout.RosdepYAML, layout.RosdepList},
				Commands: []string{
					fmt.Sprintf("echo \"yaml file://%s\" > %s/99-custom.list", layout.RosdepYAML, layout.RosdepList),
					"rosdep update",
				},
			},
		},
	}
	releaseRepo := types.SourceRepository{
		Name:      releasePythonRepo,
		URL:       fmt.Sprintf("%s/%s.git", infrastructureURL, releasePythonRepo),
		Recursive: true,
	}
	toolSection.Targets = append(toolSection.Targets, withClone(layout, releaseRepo, types.MakeTarget{
		Target:   releasePythonBin,
		Commands: []string{fmt.Sprintf("ln -sf %s/scripts/ros_release_python $@", repoDir(layout, releasePythonRepo))},
	})...)
	for _, tool := range pythonTooling {
		depends := append([]string{releasePythonBin}, envDeps...)
		for _, dep := range tool.depends {
			depends = append(depends, stampPath(layout, dep))
		}
		repo := types.SourceRepository{
			Name:      tool.name,
			URL:       fmt.Sprintf("%s/%s.git", infrastructureURL, tool.name),
			Recursive: true,
		}
		toolSection.Targets = append(toolSection.Targets, withClone(layout, repo, types.MakeTarget{
			Target:  stampPath(layout, tool.name),
			Depends: depends,
			Commands: []string{
				fmt.Sprintf("cd `dirname $<` && ros_release_python deb3 && apt-get install -y ./deb_dist/*.deb && mv ./deb_dist/*.deb %s && touch $@", layout.DebDir),
			},
		})...)
	}
	plan.Sections = append(plan.Sections, toolSection)

	sorted := append([]BuildPackage(nil), packages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	buildSection := MakefileSection{Title: "ROS packages to build"}
	for _, pkg := range sorted {
		deps := append([]string(nil), pkg.Depends...)
		sort.Strings(deps)
		depends := make([]string, 0, len(deps)+1)
		for _, dep := range deps {
			depends = append(depends, path.Join(layout.StampDir, dep))
		}
		depends = append(depends, layout.RosdepCache)
		buildSection.Targets = append(buildSection.Targets, withClone(layout, pkg.Repo, types.MakeTarget{
			Target:  path.Join(layout.StampDir, pkg.Name),
			Depends: depends,
			Commands: []string{
				fmt.Sprintf("$(BUILDER) build --repo %s --package %s --output-dir %s && touch $@", repoDir(layout, pkg.Repo.Name), pkg.Name, layout.DebDir),
			},
			Alias: pkg.Name,
		})...)
	}
	buildSection.Targets = append(buildSection.Targets, types.MakeTarget{
		Target: "clean",
		Commands: []string{
			fmt.Sprintf("rm -rf %s %s %s %s %s/20-default.list", layout.DebDir, layout.StampDir, layout.BuildDir, releasePythonBin, layout.RosdepList),
		},
		Phony: true,
	})
	plan.Sections = append(plan.Sections, buildSection)
	return plan
}

// RenderMakefile writes plan as Makefile text. A target already written
// earlier in the file is skipped; several packages usually share one
// repository clone rule.
func RenderMakefile(plan MakefilePlan) string {
	var b strings.Builder
	for _, variable := range plan.Variables {
		b.WriteString(variable)
		b.WriteString("\n")
	}
	if len(plan.Variables) > 0 {
		b.WriteString("\n")
	}
	written := map[string]struct{}{}
	for _, section := range plan.Sections {
		if section.Title != "" {
			fmt.Fprintf(&b, "# %s\n\n", section.Title)
		}
		for _, target := range section.Targets {
			if _, dup := written[target.Target]; dup {
				log.Debug().Str("target", target.Target).Msg("skip duplicated target")
				continue
			}
			written[target.Target] = struct{}{}
			b.WriteString(renderTarget(target))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderTarget(target types.MakeTarget) string {
	var b strings.Builder
	if target.Comment != "" {
		fmt.Fprintf(&b, "# %s\n", target.Comment)
	}
	if target.Alias != "" {
		fmt.Fprintf(&b, ".PHONY: %s\n%s: %s\n\n", target.Alias, target.Alias, target.Target)
	}
	if target.Phony {
		fmt.Fprintf(&b, ".PHONY: %s\n", target.Target)
	}
	b.WriteString(target.Target)
	b.WriteString(":")
	if len(target.Depends) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(target.Depends, " "))
	}
	b.WriteString("\n")
	for _, cmd := range target.Commands {
		fmt.Fprintf(&b, "\t%s\n", cmd)
	}
	return b.String()
}

// RosdepEntries maps each source-built package to the binary package name
// it will be installed under, for the custom rosdep source.
func RosdepEntries(rosDistro string, packages []string) map[string]string {
	entries := make(map[string]string, len(packages))
	for _, pkg := range packages {
		entries[pkg] = shared.DebPackageName(rosDistro, pkg)
	}
	return entries
}

// withClone prefixes target with the clone rule of repo and makes the
// target depend on it.
func withClone(layout EnvLayout, repo types.SourceRepository, target types.MakeTarget) []types.MakeTarget {
	clone := cloneTarget(layout, repo)
	target.Depends = append([]string{clone.Target}, target.Depends...)
	return []types.MakeTarget{clone, target}
}

func cloneTarget(layout EnvLayout, repo types.SourceRepository) types.MakeTarget {
	cmd := fmt.Sprintf("git clone %s `dirname $@`", repo.URL)
	if repo.Branch != "" {
		cmd += " -b " + repo.Branch
	}
	if repo.Recursive {
		cmd += " --recursive"
	}
	return types.MakeTarget{
		Target:   path.Join(repoDir(layout, repo.Name), ".git"),
		Commands: []string{cmd},
	}
}

func repoDir(layout EnvLayout, name string) string {
	return path.Join(layout.BuildDir, name)
}

func stampPath(layout EnvLayout, pkg string) string {
	return path.Join(layout.StampDir, strings.ReplaceAll(pkg, "_", "-"))
}
