package googlefonts

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/logging"
	"github.com/dshills/fontcritic/internal/testable"
)

var BrokenLinks = check.New("googlefonts/description/broken_links", "Does DESCRIPTION file contain broken links?").
	Rationale("The snippet of HTML in the DESCRIPTION.en_us.html file is added to the font family webpage on the Google Fonts website. " +
		"For that reason, all hyperlinks in it must be properly working.").
	Proposal("https://github.com/fonttools/fontbakery/issues/4110").
	AppliesTo(DESC.Tag).
	RunOne(brokenLinks).
	MustBuild()

func brokenLinks(t *testable.Testable, ctx *check.Context) ([]check.Status, error) {
	client, err := ctx.HTTPClient()
	if errors.Is(err, check.ErrNetworkDisabled) {
		return nil, check.Skip("network-check", "Skipping network check")
	}
	if err != nil {
		return nil, err
	}
	links, err := anchors(t.Contents)
	if err != nil {
		return nil, err
	}
	var problems []check.Status
	var broken []string
	done := map[string]bool{}
	for _, a := range links {
		if done[a.href] {
			continue
		}
		done[a.href] = true
		if addr, ok := strings.CutPrefix(a.href, "mailto:"); ok {
			if _, domain, ok := strings.Cut(addr, "@"); ok && strings.Contains(domain, ".") {
				problems = append(problems, check.Fail("email", "Found an email address: "+a.href))
			}
			continue
		}
		status, err := probe(ctx.Ctx(), client, a.href)
		switch {
		case isTimeout(err):
			problems = append(problems, check.Warn("timeout", fmt.Sprintf(
				"Timed out while attempting to access: '%s'. Please verify if that's a broken link.", a.href)))
		case err != nil:
			broken = append(broken, fmt.Sprintf("%s (error: %v)", a.href, err))
		case status >= http.StatusBadRequest:
			broken = append(broken, fmt.Sprintf("%s (status code: %d)", a.href, status))
		}
	}
	if len(broken) > 0 {
		problems = append(problems, check.Fail("broken-links",
			"The following links are broken:\n\n* "+strings.Join(broken, "\n* ")))
	}
	return problems, nil
}

// probe sends a HEAD request, retrying with GET for servers that refuse HEAD.
func probe(ctx context.Context, client *http.Client, url string) (int, error) {
	status, err := request(ctx, client, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = request(ctx, client, http.MethodGet, url)
	}
	logging.Debug("link probed", "url", url, "status", status, "error", err)
	return status, err
}

func request(ctx context.Context, client *http.Client, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
