package core

import (
	"fmt"
	"sort"
	"strings"

	"noetic-jammy/internal/types"
)

// requiredBuildPackages are installed in every build image regardless of
// the walked dependencies.
var requiredBuildPackages = []string{
	"build-essential",
	"dh-make",
	"dh-python",
	"fakeroot",
	"git",
	"libturbojpeg0-dev",
	"libxml2-utils",
	"python3-dateutil",
	"python3-docutils",
	"python3-packaging",
	"python3-pip",
	"python3-stdeb",
	"python3-vcstools",
	"vim",
}

// ignoredAptPackages are built from source in the image or missing from
// the Ubuntu archive.
var ignoredAptPackages = []string{
	"python3-catkin-pkg",
	"python3-catkin-pkg-modules",
	"python3-rosdep",
	"python3-rosdep-modules",
	"python3-rosdistro",
	"python3-rosdistro-modules",
	"python3-rospkg",
	"python3-rospkg-modules",
}

// DockerfileInput describes the build image.
type DockerfileInput struct {
	Codename    string
	AptPackages []string
	Extra       []string
	Ignore      []string

	// Builder is the file name of the build binary copied next to the
	// Dockerfile. Empty means DefaultBuilder.
	Builder string
}

// ImagePackages returns the sorted apt package set installed in the image.
func ImagePackages(in DockerfileInput) []string {
	set := map[string]struct{}{}
	for _, group := range [][]string{requiredBuildPackages, in.AptPackages, in.Extra} {
		for _, name := range group {
			if name = strings.TrimSpace(name); name != "" {
				set[name] = struct{}{}
			}
		}
	}
	for _, group := range [][]string{ignoredAptPackages, in.Ignore} {
		for _, name := range group {
			delete(set, strings.TrimSpace(name))
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderDockerfile renders the build image definition.
func RenderDockerfile(in DockerfileInput) string {
	codename := in.Codename
	if codename == "" {
		codename = types.DefaultOSVersion
	}
	var b strings.Builder
	fmt.Fprintf(&b, "FROM ubuntu:%s\n", codename)
	b.WriteString("ENV DEBIAN_FRONTEND=noninteractive\n")
	b.WriteString("RUN apt-get update && apt-get upgrade -y && apt-get install -y \\\n  ")
	b.WriteString(strings.Join(ImagePackages(in), " \\\n  "))
	b.WriteString("\n\n")
	b.WriteString("RUN pip3 install -U pip && pip3 install bloom\n\n")
	b.WriteString("COPY rosdep.yaml /root\n")
	builder := in.Builder
	if builder == "" {
		builder = DefaultBuilder
	}
	fmt.Fprintf(&b, "COPY %s /usr/local/bin/\n", builder)
	b.WriteString("COPY Makefile /root/\n\n")
	b.WriteString("WORKDIR /root\n")
	return b.String()
}
