package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImagePackages(t *testing.T) {
	names := ImagePackages(DockerfileInput{
		AptPackages: []string{"liblog4cxx-dev", "python3-rospkg", "git", "python3-yaml"},
		Extra:       []string{"ccache"},
		Ignore:      []string{"vim"},
	})
	assert.Contains(t, names, "liblog4cxx-dev")
	assert.Contains(t, names, "python3-yaml")
	assert.Contains(t, names, "ccache")
	assert.Contains(t, names, "build-essential")
	assert.NotContains(t, names, "python3-rospkg")
	assert.NotContains(t, names, "vim")
	assert.True(t, sortedUnique(names))
}

func TestRenderDockerfile(t *testing.T) {
	content := RenderDockerfile(DockerfileInput{
		Codename:    "jammy",
		AptPackages: []string{"libboost-all-dev"},
		Builder:     "noetic-jammy",
	})
	assert.True(t, strings.HasPrefix(content, "FROM ubuntu:jammy\nENV DEBIAN_FRONTEND=noninteractive\n"))
	assert.Contains(t, content, "apt-get install -y \\\n  build-essential \\\n")
	assert.Contains(t, content, "  libboost-all-dev \\\n")
	assert.Contains(t, content, "RUN pip3 install -U pip && pip3 install bloom\n")
	assert.Contains(t, content, "COPY rosdep.yaml /root\nCOPY noetic-jammy /usr/local/bin/\nCOPY Makefile /root/\n")
	assert.True(t, strings.HasSuffix(content, "WORKDIR /root\n"))
}

func TestRenderDockerfileDefaultBuilderMatchesMakefile(t *testing.T) {
	content := RenderDockerfile(DockerfileInput{Codename: "jammy"})
	assert.True(t, strings.HasPrefix(content, "FROM ubuntu:jammy\n"))
	assert.Contains(t, content, "COPY "+DefaultBuilder+" /usr/local/bin/\n")

	plan := PlanMakefile(t.Context(), DefaultEnvLayout("noetic"), []string{"catkin"}, nil)
	assert.Contains(t, RenderMakefile(plan), "BUILDER ?= "+DefaultBuilder+"\n")
}

func sortedUnique(values []string) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] >= values[i] {
			return false
		}
	}
	return true
}
