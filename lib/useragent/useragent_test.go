package useragent

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmbedsVersionVerbatim(t *testing.T) {
	releases := []Release{
		{Version: "140.0", Channel: ChannelStable},
		{Version: "141.0.2", Channel: ChannelStable},
		{Version: "142.0", Channel: ChannelBeta},
	}

	for _, r := range releases {
		for _, p := range DefaultPlatforms {
			ua := Generate(Firefox, r, p)
			require.Contains(t, ua, "Firefox/"+r.Version)
			require.Contains(t, ua, "rv:"+r.Version)
			require.Contains(t, ua, "("+p.Token+";")
		}
	}
}

func TestGenerateGeckoToken(t *testing.T) {
	r := Release{Version: "141.0", Channel: ChannelStable}

	desktop := Generate(Firefox, r, Platform{Token: "X11; Linux x86_64"})
	require.Contains(t, desktop, "Gecko/20100101")

	android := Generate(Firefox, r, Platform{Token: "Android 15; Mobile", Android: true})
	require.Contains(t, android, "Gecko/141.0")
	require.NotContains(t, android, "Gecko/20100101")
}

func TestGenerateAllMajorCutoff(t *testing.T) {
	releases := []Release{
		{Version: "139.0.4", Channel: ChannelStable},
		{Version: "140.0", Channel: ChannelStable},
		{Version: "oops", Channel: ChannelStable},
	}

	candidates := GenerateAll(Firefox, releases, DefaultPlatforms, DefaultMinMajor)
	require.Len(t, candidates, len(DefaultPlatforms))
	for _, c := range candidates {
		require.True(t, strings.HasSuffix(c, "Firefox/140.0"), c)
	}
}

func TestGenerateAllEmptyInput(t *testing.T) {
	candidates := GenerateAll(Firefox, nil, DefaultPlatforms, DefaultMinMajor)
	require.Empty(t, candidates)

	result := ValidateSet(candidates, nil)
	require.Empty(t, result.Agents)
	require.Zero(t, result.Rejected)
}

func TestMajor(t *testing.T) {
	for version, want := range map[string]int{
		"140.0":   140,
		"141.0.2": 141,
		"7":       7,
	} {
		major, ok := Major(version)
		require.True(t, ok, version)
		require.Equal(t, want, major)
	}

	for _, version := range []string{"", "beta", "x.0", ".140"} {
		_, ok := Major(version)
		require.False(t, ok, version)
	}
}

func TestValidGrammar(t *testing.T) {
	valid := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:146.0) Gecko/20100101 Firefox/146.0",
		"Mozilla/5.0 (Android 15; Mobile; rv:146.0) Gecko/146.0 Firefox/146.0",
		"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:140.0.1) Gecko/20100101 Firefox/140.0.1",
	}
	for _, ua := range valid {
		require.True(t, Valid(ua), ua)
	}

	invalid := []string{
		"",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:146.0) Gecko/20100101",
		"Mozilla/5.0 (Windows NT 10.0; rv:146.0) Gecko/20100101 Firefox/beta",
		"Mozilla/4.0 (X11; Linux x86_64; rv:146.0) Gecko/20100101 Firefox/146.0",
		"Mozilla/5.0 (X11; Linux x86_64; rv:146.0 beta) Gecko/20100101 Firefox/146.0 beta",
	}
	for _, ua := range invalid {
		require.False(t, Valid(ua), ua)
	}
}

func TestValidateSet(t *testing.T) {
	releases := []Release{
		{Version: "140.0", Channel: ChannelStable},
		{Version: "141.0", Channel: ChannelStable},
	}

	candidates := []string{
		"Mozilla/5.0 (X11; Linux x86_64; rv:140.0) Gecko/20100101 Firefox/140.0",
		// duplicate, deduplicated but not counted as rejected
		"Mozilla/5.0 (X11; Linux x86_64; rv:140.0) Gecko/20100101 Firefox/140.0",
		"Mozilla/5.0 (Android 15; Mobile; rv:141.0) Gecko/141.0 Firefox/141.0",
		// missing version segment
		"Mozilla/5.0 (X11; Linux x86_64; rv:140.0) Gecko/20100101",
		// structurally fine but the version was never observed
		"Mozilla/5.0 (X11; Linux x86_64; rv:999.0) Gecko/20100101 Firefox/999.0",
	}

	result := ValidateSet(candidates, releases)
	require.Equal(t, 2, result.Rejected)

	want := []string{
		"Mozilla/5.0 (Android 15; Mobile; rv:141.0) Gecko/141.0 Firefox/141.0",
		"Mozilla/5.0 (X11; Linux x86_64; rv:140.0) Gecko/20100101 Firefox/140.0",
	}
	if diff := cmp.Diff(want, result.Agents); diff != "" {
		t.Fatalf("unexpected output set (-want +got):\n%s", diff)
	}
}

func TestValidateSetDeterministic(t *testing.T) {
	releases := []Release{
		{Version: "140.0", Channel: ChannelStable},
		{Version: "141.0", Channel: ChannelStable},
		{Version: "142.0", Channel: ChannelBeta},
	}

	first := ValidateSet(GenerateAll(Firefox, releases, DefaultPlatforms, DefaultMinMajor), releases)
	second := ValidateSet(GenerateAll(Firefox, releases, DefaultPlatforms, DefaultMinMajor), releases)

	require.Equal(t, first.Agents, second.Agents)
	require.Len(t, first.Agents, len(releases)*len(DefaultPlatforms))
	for _, ua := range first.Agents {
		require.True(t, Valid(ua), ua)
	}
}
