package firefox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"uaforge/lib/telemetry"
	"uaforge/lib/useragent"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const feedFixture = `{
	"releases": {
		"firefox-140.0": {"category": "major", "product": "firefox", "version": "140.0", "date": "2025-06-24"},
		"firefox-141.0": {"category": "major", "product": "firefox", "version": "141.0", "date": "2025-07-22"},
		"firefox-141.0.1": {"category": "stable", "product": "firefox", "version": "141.0.1", "date": "2025-07-29"},
		"firefox-142.0b4": {"category": "dev", "product": "firefox", "version": "142.0b4", "date": "2025-08-01"}
	}
}`

const pageFixture = `<html><body><main id="main-content">
<ol class="c-release-list">
	<li><strong>Firefox 141</strong>
		<ol>
			<li><a href="/releases/141.0/">141.0</a></li>
			<li><a href="/releases/141.0.1/">141.0.1</a></li>
		</ol>
	</li>
	<li><strong>Firefox 140</strong>
		<ol>
			<li><a href="/releases/140.0/">140.0</a></li>
		</ol>
	</li>
</ol>
</main></body></html>`

func newTestClient(t *testing.T, feed, page http.HandlerFunc) *Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/firefox.json", feed)
	mux.HandleFunc("/releases/", page)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		FeedUrl:     server.URL + "/firefox.json",
		ReleasesUrl: server.URL + "/releases/",
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func serve(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestFetchReleasesFromFeed(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firefox")
	defer cleanup()

	client := newTestClient(t,
		serve(http.StatusOK, feedFixture),
		serve(http.StatusInternalServerError, ""),
	)

	releases, err := client.FetchReleases(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []useragent.Release{
		{Version: "140.0", Channel: useragent.ChannelStable},
		{Version: "141.0", Channel: useragent.ChannelStable},
		{Version: "141.0.1", Channel: useragent.ChannelStable},
		{Version: "142.0b4", Channel: useragent.ChannelBeta},
	}, releases)
}

func TestFetchReleasesFallsBackToPage(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firefox")
	defer cleanup()

	client := newTestClient(t,
		serve(http.StatusNotFound, ""),
		serve(http.StatusOK, pageFixture),
	)

	releases, err := client.FetchReleases(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var versions []string
	for _, r := range releases {
		versions = append(versions, r.Version)
		require.Equal(t, useragent.ChannelStable, r.Channel)
	}
	require.Equal(t, []string{"141.0", "141.0.1", "140.0"}, versions)
}

func TestFetchReleasesRetrievalError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firefox")
	defer cleanup()

	client := newTestClient(t,
		serve(http.StatusInternalServerError, ""),
		serve(http.StatusInternalServerError, ""),
	)

	_, err := client.FetchReleases(context.Background())
	require.ErrorIs(t, err, ErrRetrieval)
}

func TestParseReleasesStructureMismatch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><main id="main-content"><p>moved elsewhere</p></main></body></html>`,
	))
	if err != nil {
		t.Fatal(err)
	}

	_, err = parseReleases(context.Background(), doc)
	require.ErrorIs(t, err, ErrPageStructure)
}

func TestParseReleasesEmptyList(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><ol class="c-release-list"></ol></body></html>`,
	))
	if err != nil {
		t.Fatal(err)
	}

	releases, err := parseReleases(context.Background(), doc)
	require.NoError(t, err)
	require.Empty(t, releases)
}
