// Package useragent generates and validates browser identifier strings
// from release records. generation is a pure function of the template,
// the release and the platform, so a given release set always produces
// the same output set.
package useragent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type Channel string

const (
	ChannelStable  Channel = "stable"
	ChannelBeta    Channel = "beta"
	ChannelNightly Channel = "nightly"
)

// Release is one published version of the browser product. immutable
// once fetched, the release listing is the source of truth.
type Release struct {
	Version string
	Channel Channel
}

// Platform describes one platform segment the template can be filled
// with. Android builds advertise the product version as the Gecko token
// where desktop builds carry a fixed build date.
type Platform struct {
	Token   string
	Android bool
}

// the platform set advertised on
// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/User-Agent/Firefox
var DefaultPlatforms = []Platform{
	{Token: "Windows NT 10.0; Win64; x64"},
	{Token: "Macintosh; Intel Mac OS X 15.7"},
	{Token: "X11; Linux x86_64"},
	{Token: "X11; Ubuntu; Linux x86_64"},
	{Token: "Android 15; Mobile", Android: true},
	{Token: "Android 15; Tablet", Android: true},
}

// Template is the identifier format string. Pattern carries the
// {platform}, {rv}, {gecko} and {version} placeholders.
type Template struct {
	Pattern   string
	GeckoDate string
}

var Firefox = Template{
	Pattern:   "Mozilla/5.0 ({platform}; rv:{rv}) Gecko/{gecko} Firefox/{version}",
	GeckoDate: "20100101",
}

// DefaultMinMajor is the oldest major version worth advertising.
// versions at or below it no longer show up in real traffic.
const DefaultMinMajor = 140

// Generate renders one candidate identifier for a release on a platform.
// pure and deterministic, the release version is embedded verbatim.
func Generate(t Template, r Release, p Platform) string {
	gecko := t.GeckoDate
	if p.Android {
		gecko = r.Version
	}
	s := t.Pattern
	s = strings.ReplaceAll(s, "{platform}", p.Token)
	s = strings.ReplaceAll(s, "{rv}", r.Version)
	s = strings.ReplaceAll(s, "{gecko}", gecko)
	s = strings.ReplaceAll(s, "{version}", r.Version)
	return s
}

// GenerateAll produces one candidate per (release, platform) pair,
// skipping releases older than minMajor or without a numeric major.
func GenerateAll(t Template, releases []Release, platforms []Platform, minMajor int) []string {
	var candidates []string
	for _, p := range platforms {
		for _, r := range releases {
			major, ok := Major(r.Version)
			if !ok || major < minMajor {
				continue
			}
			candidates = append(candidates, Generate(t, r, p))
		}
	}
	return candidates
}

// Major extracts the numeric major version from a dotted version string.
func Major(version string) (int, bool) {
	segment, _, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return major, true
}

var grammar = regexp.MustCompile(
	`^Mozilla/5\.0 \([^()]+; rv:[0-9]+(?:\.[0-9]+)*\) Gecko/[0-9]+(?:\.[0-9]+)* Firefox/[0-9]+(?:\.[0-9]+)*$`,
)

var productVersion = regexp.MustCompile(` Firefox/([0-9]+(?:\.[0-9]+)*)$`)

// Valid reports whether a candidate matches the structural grammar.
func Valid(candidate string) bool {
	return grammar.MatchString(candidate)
}

// ProductVersion extracts the embedded product version of a candidate.
func ProductVersion(candidate string) (string, bool) {
	groups := productVersion.FindStringSubmatch(candidate)
	if len(groups) < 2 {
		return "", false
	}
	return groups[1], true
}

type SetResult struct {
	// Agents is the validated identifier set, deduplicated and sorted
	// so reruns on the same input are byte-identical.
	Agents []string
	// Rejected counts candidates dropped by the structural grammar or
	// the release cross-check. dropped candidates are never fatal.
	Rejected int
}

// ValidateSet filters candidates down to the output set. a candidate
// survives when it matches the grammar and embeds a version that exists
// in the acquired release records.
func ValidateSet(candidates []string, releases []Release) SetResult {
	known := make(map[string]bool, len(releases))
	for _, r := range releases {
		known[r.Version] = true
	}

	seen := make(map[string]bool, len(candidates))
	result := SetResult{}
	for _, c := range candidates {
		if !Valid(c) {
			result.Rejected++
			continue
		}
		version, ok := ProductVersion(c)
		if !ok || !known[version] {
			result.Rejected++
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		result.Agents = append(result.Agents, c)
	}

	sort.Strings(result.Agents)
	return result
}
