package firefox

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"uaforge/lib/htmlutil"
	"uaforge/lib/useragent"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

var dottedVersion = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)*$`)

func (c *Client) fetchPage(ctx context.Context) ([]useragent.Release, error) {
	ctx, span := tracer.Start(ctx, "fetchPage")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.ReleasesUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch releases page")
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected page status")
		return nil, fmt.Errorf("releases page returned status %d", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	return parseReleases(ctx, doc)
}

// parseReleases walks the release list of the public releases page. every
// version is an anchor nested inside an ol.c-release-list entry. a page
// without that list means the markup changed (or the static document is
// an unrendered shell) and is reported as ErrPageStructure.
func parseReleases(ctx context.Context, doc *goquery.Document) ([]useragent.Release, error) {
	ctx, span := tracer.Start(ctx, "parseReleases")
	defer span.End()

	list := doc.Find("ol.c-release-list")
	if list.Length() == 0 {
		span.SetStatus(codes.Error, ErrPageStructure.Error())
		return nil, ErrPageStructure
	}

	anchors := htmlutil.GetAnchors(ctx, list.Find("li ol li a"))

	seen := map[string]bool{}
	var releases []useragent.Release
	for _, a := range anchors {
		if !dottedVersion.MatchString(a.Name) || seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		// the page only lists shipped versions, the channel tag of
		// prereleases is not recoverable from this source
		releases = append(releases, useragent.Release{
			Version: a.Name,
			Channel: useragent.ChannelStable,
		})
	}

	return releases, nil
}
