package agents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"uaforge/lib/testutil"
	"uaforge/lib/useragent"
	"uaforge/services/agents/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type fakeSource struct {
	releases []useragent.Release
	err      error
}

func (f fakeSource) FetchReleases(ctx context.Context) ([]useragent.Release, error) {
	return f.releases, f.err
}

func setupService(t *testing.T, source ReleaseSource) Service {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/agents",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	t.Cleanup(func() { setup.DB.Close() })

	return NewService(setup.DB, Options{
		Source:     source,
		SourceName: "fake",
	})
}

func TestPipeline(t *testing.T) {
	source := fakeSource{releases: []useragent.Release{
		{Version: "140.0", Channel: useragent.ChannelStable},
		{Version: "141.0", Channel: useragent.ChannelStable},
		{Version: "139.0", Channel: useragent.ChannelStable},
	}}
	service := setupService(t, source)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	crawled, err := service.Crawl(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 3, crawled)

	result, err := service.Generate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// 139.0 is below the major cutoff and produces nothing
	require.Equal(t, 2*len(useragent.DefaultPlatforms), result.Generated)
	require.Zero(t, result.Rejected)

	rows, err := service.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, rows, result.Generated)

	seen := map[string]bool{}
	for _, r := range rows {
		require.False(t, seen[r.Value], "duplicate entry: %s", r.Value)
		seen[r.Value] = true
		require.True(t, useragent.Valid(r.Value), r.Value)
		require.Contains(t, r.Value, "Firefox/"+r.Version)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	source := fakeSource{releases: []useragent.Release{
		{Version: "141.0", Channel: useragent.ChannelStable},
		{Version: "140.0.1", Channel: useragent.ChannelStable},
	}}
	service := setupService(t, source)

	ctx := context.Background()
	_, err := service.Crawl(ctx)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")

	_, err = service.Generate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.Export(ctx, first, FormatLines)
	if err != nil {
		t.Fatal(err)
	}

	// regenerating from the same release records must overwrite the set
	// with byte-identical contents
	_, err = service.Generate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.Export(ctx, second, FormatLines)
	if err != nil {
		t.Fatal(err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	require.NotEmpty(t, a)
	require.Equal(t, a, b)
}

func TestEmptyReleaseListing(t *testing.T) {
	service := setupService(t, fakeSource{})

	ctx := context.Background()
	crawled, err := service.Crawl(ctx)
	require.NoError(t, err)
	require.Zero(t, crawled)

	result, err := service.Generate(ctx)
	require.NoError(t, err)
	require.Zero(t, result.Generated)
	require.Zero(t, result.Rejected)

	path := filepath.Join(t.TempDir(), "agents.txt")
	exported, err := service.Export(ctx, path, FormatLines)
	require.NoError(t, err)
	require.Zero(t, exported)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, content)
}

func TestMalformedCandidatesAreCountedNotFatal(t *testing.T) {
	source := fakeSource{releases: []useragent.Release{
		{Version: "141.0", Channel: useragent.ChannelStable},
		// the major parses but the version is not a dotted numeric,
		// every candidate generated from it fails the grammar
		{Version: "141.0 beta", Channel: useragent.ChannelBeta},
	}}
	service := setupService(t, source)

	ctx := context.Background()
	_, err := service.Crawl(ctx)
	if err != nil {
		t.Fatal(err)
	}

	result, err := service.Generate(ctx)
	require.NoError(t, err)
	require.Equal(t, len(useragent.DefaultPlatforms), result.Generated)
	require.Equal(t, len(useragent.DefaultPlatforms), result.Rejected)

	rows, err := service.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		require.Equal(t, "141.0", r.Version)
	}
}

func TestCrawlSurfacesRetrievalError(t *testing.T) {
	retrievalErr := errors.New("listing unreachable")
	service := setupService(t, fakeSource{err: retrievalErr})

	_, err := service.Crawl(context.Background())
	require.ErrorIs(t, err, retrievalErr)
}

func TestExportJson(t *testing.T) {
	source := fakeSource{releases: []useragent.Release{
		{Version: "140.0", Channel: useragent.ChannelStable},
	}}
	service := setupService(t, source)

	ctx := context.Background()
	_, err := service.Crawl(ctx)
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.Generate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "agents.json")
	exported, err := service.Export(ctx, path, FormatJson)
	require.NoError(t, err)
	require.Equal(t, len(useragent.DefaultPlatforms), exported)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, content[0] == '[')
	require.Contains(t, string(content), "Firefox/140.0")
}

func TestExportWriteError(t *testing.T) {
	service := setupService(t, fakeSource{})

	path := filepath.Join(t.TempDir(), "missing", "agents.txt")
	_, err := service.Export(context.Background(), path, FormatLines)
	require.ErrorIs(t, err, ErrWrite)
}

func TestPick(t *testing.T) {
	source := fakeSource{releases: []useragent.Release{
		{Version: "140.0", Channel: useragent.ChannelStable},
	}}
	service := setupService(t, source)

	ctx := context.Background()
	_, err := service.Pick(ctx)
	require.ErrorIs(t, err, ErrEmptySet)

	_, err = service.Crawl(ctx)
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.Generate(ctx)
	if err != nil {
		t.Fatal(err)
	}

	ua, err := service.Pick(ctx)
	require.NoError(t, err)
	require.True(t, useragent.Valid(ua), ua)
}
