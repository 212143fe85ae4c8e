// Package firefox retrieves the list of published Firefox releases.
//
// acquisition prefers the structured product-details feed and only falls
// back to the public releases page when the feed is unreachable. the page
// itself is fetched statically first and through a headless browser when
// the static document carries no release list.
package firefox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"time"
	"uaforge/lib/restyutil"
	"uaforge/lib/telemetry"
	"uaforge/lib/useragent"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("uaforge.scrapers.firefox")

// ErrRetrieval wraps every failure mode of FetchReleases: feed, static
// page and rendered page all failed. surfaced to the invoker, no
// automatic recovery.
var ErrRetrieval = errors.New("could not retrieve the release listing")

// ErrPageStructure means the releases page no longer carries the
// expected release-list markup.
var ErrPageStructure = errors.New("releases page structure did not match")

const (
	DefaultFeedUrl     = "https://product-details.mozilla.org/1.0/firefox.json"
	DefaultReleasesUrl = "https://www.firefox.com/en-US/releases/"
)

type Client struct {
	Http        *resty.Client
	FeedUrl     string
	ReleasesUrl string
	// Rendered enables the headless-browser fallback when the static
	// page fetch yields nothing usable.
	Rendered bool
}

type ClientOptions struct {
	FeedUrl     string
	ReleasesUrl string
	Rendered    bool
	// DebugOutput receives a dump of every HTTP exchange when set.
	DebugOutput restyutil.Output
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.FeedUrl == "" {
		opts.FeedUrl = DefaultFeedUrl
	}
	if opts.ReleasesUrl == "" {
		opts.ReleasesUrl = DefaultReleasesUrl
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", fetchUserAgent)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "uaforge.scrapers.firefox.http")
	restyutil.DumpExchanges(client, opts.DebugOutput)

	return &Client{
		Http:        client,
		FeedUrl:     opts.FeedUrl,
		ReleasesUrl: opts.ReleasesUrl,
		Rendered:    opts.Rendered,
	}, nil
}

// FetchReleases produces the current sequence of published release
// records. an empty (but well-formed) listing is not an error.
func (c *Client) FetchReleases(ctx context.Context) ([]useragent.Release, error) {
	ctx, span := tracer.Start(ctx, "FetchReleases")
	defer span.End()

	releases, feedErr := c.fetchFeed(ctx)
	if feedErr == nil {
		span.SetAttributes(attribute.Int("releases", len(releases)))
		return releases, nil
	}
	slog.WarnContext(
		ctx, "structured feed unavailable, falling back to the releases page",
		"feed", c.FeedUrl,
		"err", feedErr,
	)

	releases, pageErr := c.fetchPage(ctx)
	if pageErr == nil {
		span.SetAttributes(attribute.Int("releases", len(releases)))
		return releases, nil
	}

	if c.Rendered {
		slog.WarnContext(
			ctx, "static page fetch failed, falling back to a rendered session",
			"err", pageErr,
		)
		releases, renderErr := c.fetchRendered(ctx)
		if renderErr == nil {
			span.SetAttributes(attribute.Int("releases", len(releases)))
			return releases, nil
		}
		pageErr = errors.Join(pageErr, renderErr)
	}

	err := fmt.Errorf("%w: %v", ErrRetrieval, errors.Join(feedErr, pageErr))
	span.RecordError(err)
	span.SetStatus(codes.Error, "all acquisition strategies failed")
	return nil, err
}
