package firefox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"uaforge/lib/useragent"

	"go.opentelemetry.io/otel/codes"
)

// the product-details feed maps keys like "firefox-140.0" to release
// descriptors. categories observed in the wild: major, stable, dev, esr.
type feedRelease struct {
	Category string `json:"category"`
	Product  string `json:"product"`
	Version  string `json:"version"`
	Date     string `json:"date"`
}

type feedDocument struct {
	Releases map[string]feedRelease `json:"releases"`
}

func (c *Client) fetchFeed(ctx context.Context) ([]useragent.Release, error) {
	ctx, span := tracer.Start(ctx, "fetchFeed")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.FeedUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch feed")
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected feed status")
		return nil, fmt.Errorf("feed returned status %d", res.StatusCode())
	}

	var doc feedDocument
	err = json.Unmarshal(res.Body(), &doc)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse feed")
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if doc.Releases == nil {
		span.SetStatus(codes.Error, "feed missing releases key")
		return nil, fmt.Errorf("feed did not contain a release map")
	}

	// map iteration order is random, sort the keys so the release
	// sequence is stable across runs
	keys := make([]string, 0, len(doc.Releases))
	for k := range doc.Releases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := map[string]bool{}
	var releases []useragent.Release
	for _, k := range keys {
		r := doc.Releases[k]
		if r.Version == "" || seen[r.Version] {
			continue
		}
		seen[r.Version] = true
		releases = append(releases, useragent.Release{
			Version: r.Version,
			Channel: channelOf(r.Category),
		})
	}

	return releases, nil
}

func channelOf(category string) useragent.Channel {
	switch category {
	case "dev":
		return useragent.ChannelBeta
	case "nightly":
		return useragent.ChannelNightly
	default:
		return useragent.ChannelStable
	}
}
