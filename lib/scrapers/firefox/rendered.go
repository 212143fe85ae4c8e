package firefox

import (
	"context"
	"strings"
	"time"
	"uaforge/lib/useragent"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/codes"
)

// advertised while fetching so the session blends in with regular
// desktop traffic
const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

func browserOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),

		// prevent navigator.webdriver = true detection
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),

		chromedp.WindowSize(1920, 1080),
	)
}

// fetchRendered drives a headless Chrome session through the releases
// page so script-built markup gets a chance to materialize, then parses
// the resulting document like the static path does.
func (c *Client) fetchRendered(ctx context.Context) ([]useragent.Release, error) {
	ctx, span := tracer.Start(ctx, "fetchRendered")
	defer span.End()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browserOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, time.Second*60)
	defer cancelTimeout()

	var content string
	err := chromedp.Run(browserCtx,
		emulation.SetUserAgentOverride(fetchUserAgent),
		chromedp.Navigate(c.ReleasesUrl),
		chromedp.WaitReady("#main-content", chromedp.ByID),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "headless session failed")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse rendered html")
		return nil, err
	}

	return parseReleases(ctx, doc)
}
