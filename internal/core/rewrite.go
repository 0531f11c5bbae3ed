package core

import (
	"regexp"
	"strings"
	"sync"
)

var (
	cxxFlagPattern     = regexp.MustCompile(`\+\+1[14]`)
	cxxStandardPattern = regexp.MustCompile(`(CMAKE_CXX_STANDARD[ \t]+)1[14]`)
)

// runtimeDependTags are the package.xml elements declaring run dependencies
// (format 1 and format 2/3 respectively).
var runtimeDependTags = []string{"run_depend", "exec_depend"}

const (
	setupBundleDisabled = `-DCATKIN_BUILD_BINARY_PACKAGE="1"`
	setupBundleEnabled  = `-DCATKIN_BUILD_BINARY_PACKAGE="0"`
)

// RaiseCXXStandard rewrites C++11/14 declarations in a CMake build
// descriptor to C++17, in both the compiler-flag form (-std=c++14,
// gnu++11) and the CMAKE_CXX_STANDARD variable form. Other standards are
// left alone, so applying it twice is a no-op. Like a global sed
// substitution, the match is not anchored at a word end: c++14_compat
// becomes c++17_compat.
//
// Jammy's liblog4cxx headers use std::shared_mutex and std::shared_lock,
// which need C++17.
func RaiseCXXStandard(content string) string {
	content = cxxFlagPattern.ReplaceAllString(content, "++17")
	return cxxStandardPattern.ReplaceAllString(content, "${1}17")
}

// DropRunDepends removes runtime dependency elements naming any of names.
// A line holding nothing but the element is deleted entirely; elements
// sharing a line with other markup are cut out on their own.
func DropRunDepends(content string, names []string) string {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, pattern := range dependPatterns(name) {
			content = pattern.ReplaceAllString(content, "")
		}
	}
	return content
}

var (
	dependPatternsMu    sync.Mutex
	dependPatternsCache = map[string][]*regexp.Regexp{}
)

// dependPatterns returns, per runtime tag, the whole-line pattern followed
// by the inline pattern for name. Results are cached by name.
func dependPatterns(name string) []*regexp.Regexp {
	dependPatternsMu.Lock()
	defer dependPatternsMu.Unlock()
	if patterns, ok := dependPatternsCache[name]; ok {
		return patterns
	}
	patterns := make([]*regexp.Regexp, 0, 2*len(runtimeDependTags))
	for _, tag := range runtimeDependTags {
		element := `<` + tag + `(?:[ \t][^>]*)?>[ \t]*` + regexp.QuoteMeta(name) + `[ \t]*</` + tag + `>`
		patterns = append(patterns,
			regexp.MustCompile(`(?m)^[ \t]*`+element+`[ \t]*(?:\r?\n|\z)`),
			regexp.MustCompile(element),
		)
	}
	dependPatternsCache[name] = patterns
	return patterns
}

// EnableSetupBundling flips catkin's binary-package switch in a generated
// debian/rules file so that setup.sh and friends are installed into the
// binary package. Downstream builds source them from /opt/ros/<distro>.
func EnableSetupBundling(rules string) string {
	return strings.ReplaceAll(rules, setupBundleDisabled, setupBundleEnabled)
}

// HasSetupBundleSwitch reports whether rules carries the catkin switch in
// either state.
func HasSetupBundleSwitch(rules string) bool {
	return strings.Contains(rules, setupBundleDisabled) || strings.Contains(rules, setupBundleEnabled)
}
