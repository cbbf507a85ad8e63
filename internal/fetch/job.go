package fetch

import (
	"context"
	"log"
	"strings"
)

// Fetcher turns job posting URLs into description text.
type Fetcher struct {
	Options *Options
	// Render is the browser renderer; nil means WithBrowser.
	Render RenderFunc
}

// NewFetcher creates a Fetcher. nil opts means DefaultOptions.
func NewFetcher(opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Fetcher{Options: opts}
}

// JobDescription fetches urlStr and extracts the posting text with the selectors of the job
// board it is hosted on. When the text is too short and browser rendering is enabled, the page
// is rendered in headless Chrome and extracted again; the longer text wins.
func (f *Fetcher) JobDescription(ctx context.Context, urlStr string) (string, error) {
	result, err := URL(ctx, urlStr, f.Options)
	if err != nil {
		return "", err
	}

	platform := DetectPlatform(urlStr)
	text, err := extractPosting(result.HTML, platform)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract posting", Cause: err}
	}

	if ShouldUseBrowser(text) && f.Options.UseBrowser {
		if f.Options.Verbose {
			log.Printf("[fetch] %s: %d characters over HTTP, rendering in browser", urlStr, len(text))
		}
		render := f.Render
		if render == nil {
			render = WithBrowser
		}
		html, rerr := render(ctx, urlStr, f.Options.BrowserTimeout, f.Options.Verbose)
		if rerr != nil {
			log.Printf("[fetch] browser rendering failed for %s: %v", urlStr, rerr)
		} else if rendered, xerr := extractPosting(html, platform); xerr == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: "no job description text found"}
	}
	return text, nil
}

func extractPosting(html string, platform Platform) (string, error) {
	return ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
}
