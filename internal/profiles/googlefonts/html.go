package googlefonts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/testable"
)

var errNotUTF8 = errors.New("file is not valid UTF-8")

// parseSnippet parses contents as the children of a <body> element.
func parseSnippet(contents []byte) ([]*html.Node, error) {
	if !utf8.Valid(contents) {
		return nil, errNotUTF8
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(bytes.NewReader(contents), body)
}

func walk(nodes []*html.Node, fn func(*html.Node)) {
	for _, n := range nodes {
		fn(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk([]*html.Node{c}, fn)
		}
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk([]*html.Node{n}, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

type anchor struct {
	href, text string
}

// anchors lists <a href> elements in document order.
func anchors(contents []byte) ([]anchor, error) {
	nodes, err := parseSnippet(contents)
	if err != nil {
		return nil, err
	}
	var out []anchor
	walk(nodes, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.A {
			return
		}
		if href, ok := attr(n, "href"); ok {
			out = append(out, anchor{href: href, text: textContent(n)})
		}
	})
	return out, nil
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// Elements whose end tag may be omitted.
var optionalEnd = map[string]bool{
	"p": true, "li": true, "dt": true, "dd": true, "option": true,
	"tr": true, "td": true, "th": true, "thead": true, "tbody": true, "tfoot": true,
}

type tag struct {
	name  string
	attrs map[string]string
	line  int
}

// scanTags tokenizes contents and reports start tags and tag balance
// problems. The tokenizer accepts anything, so balance is checked here.
func scanTags(contents []byte) (starts []tag, problems []string, err error) {
	if !utf8.Valid(contents) {
		return nil, nil, errNotUTF8
	}
	z := html.NewTokenizer(bytes.NewReader(contents))
	line := 1
	var open []tag
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				problems = append(problems, fmt.Sprintf("line %d: %v", line, z.Err()))
			}
			break
		}
		tok := z.Token()
		cur := line
		line += bytes.Count(z.Raw(), []byte("\n"))
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			t := tag{name: tok.Data, attrs: map[string]string{}, line: cur}
			for _, a := range tok.Attr {
				t.attrs[a.Key] = a.Val
			}
			starts = append(starts, t)
			if tt == html.StartTagToken && !voidElements[tok.Data] {
				open = append(open, t)
			}
		case html.EndTagToken:
			i := len(open) - 1
			for i >= 0 && open[i].name != tok.Data {
				i--
			}
			if i < 0 {
				problems = append(problems, fmt.Sprintf("line %d: unexpected end tag </%s>", cur, tok.Data))
				continue
			}
			for _, o := range open[i+1:] {
				if !optionalEnd[o.name] {
					problems = append(problems, fmt.Sprintf("line %d: <%s> opened on line %d is not closed before </%s>", cur, o.name, o.line, tok.Data))
				}
			}
			open = open[:i]
		}
	}
	for _, o := range open {
		if !optionalEnd[o.name] {
			problems = append(problems, fmt.Sprintf("line %d: <%s> is never closed", o.line, o.name))
		}
	}
	return starts, problems, nil
}

var ValidHTML = check.New("googlefonts/description/valid_html", "Is this a proper HTML snippet?").
	Rationale("Sometimes people write malformed HTML markup. This check should ensure the file is good.\n\n" +
		"Additionally, when packaging families for being pushed to the `google/fonts` git repo, if there is no DESCRIPTION.en_us.html file, " +
		"some older versions of the `add_font.py` tool insert a placeholder description file which contains invalid html. " +
		"This file needs to either be replaced with an existing description file or edited by hand.").
	Proposal("https://github.com/fonttools/fontbakery/issues/2664").
	AppliesTo(DESC.Tag).
	RunOne(validHTML).
	MustBuild()

func validHTML(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	starts, malformed, err := scanTags(t.Contents)
	if err != nil {
		return nil, err
	}
	var problems []check.Status
	content := string(t.Contents)
	if strings.Contains(content, "<html>") || strings.Contains(content, "</html>") {
		problems = append(problems, check.Fail("html-tag",
			"DESCRIPTION file should not have an <html> tag, since it should only be a snippet that will later be included in the Google Fonts font family specimen webpage."))
	}
	if len(malformed) > 0 {
		problems = append(problems, check.Fail("malformed-snippet", fmt.Sprintf(
			"%s does not look like a proper HTML snippet. Please look for syntax errors. "+
				"Maybe the following parser error message can help you find what's wrong:\n----------------\n%s\n----------------\n",
			t.Basename(), strings.Join(malformed, "\n"))))
	}
	hasP := false
	for _, s := range starts {
		hasP = hasP || s.name == "p"
	}
	if !hasP {
		problems = append(problems, check.Fail("lacks-paragraph", fmt.Sprintf("%s does not include an HTML <p> tag.", t.Basename())))
	}
	return problems, nil
}

var unsupportedElements = []string{
	"applet", "base", "embed", "form", "frame", "frameset", "head", "iframe", "link", "math",
	"meta", "object", "script", "style", "svg", "template",
}

var UnsupportedElements = check.New("googlefonts/description/has_unsupported_elements", "Check the description doesn't contain unsupported html elements").
	Rationale("The Google Fonts backend doesn't support the following html elements: https://googlefonts.github.io/gf-guide/description.html#requirements").
	Proposal("https://github.com/fonttools/fontbakery/issues/2811#issuecomment-1907566857").
	AppliesTo(DESC.Tag).
	RunOne(hasUnsupportedElements).
	MustBuild()

func hasUnsupportedElements(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	starts, _, err := scanTags(t.Contents)
	if err != nil {
		return nil, err
	}
	unsupported := map[string]bool{}
	for _, name := range unsupportedElements {
		unsupported[name] = true
	}
	var found []string
	badVideo := false
	for _, s := range starts {
		if unsupported[s.name] {
			found = append(found, s.name)
		}
		if _, ok := s.attrs["src"]; s.name == "video" && !ok {
			badVideo = true
		}
	}
	var problems []check.Status
	if len(found) > 0 {
		problems = append(problems, check.Status{
			Severity: check.StatusError,
			Code:     "unsupported-elements",
			Message:  "The DESCRIPTION file contains unsupported html element(s). Please remove: " + strings.Join(found, ", "),
		})
	}
	if badVideo {
		problems = append(problems, check.Status{
			Severity: check.StatusError,
			Code:     "video-tag-needs-src",
			Message:  t.Basename() + " contains a video tag with no src attribute.",
		})
	}
	return problems, nil
}

var URLs = check.New("googlefonts/description/urls", "URLs on DESCRIPTION file must not display http(s) prefix.").
	Rationale("The snippet of HTML in the DESCRIPTION.en_us.html file is added to the font family webpage on the Google Fonts website.\n\n" +
		"Google Fonts has a content formatting policy for that snippet that expects the text content of anchors not to include the http:// or https:// prefixes.").
	Proposal("https://github.com/fonttools/fontbakery/issues/3497").
	AppliesTo(DESC.Tag).
	RunOne(urls).
	MustBuild()

func urls(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	links, err := anchors(t.Contents)
	if err != nil {
		return nil, err
	}
	var problems []check.Status
	for _, a := range links {
		switch {
		case a.text == "":
			problems = append(problems, check.Fail("empty-link-text",
				"The following anchor in the DESCRIPTION file has empty text content:\n\n"+a.href))
		case strings.HasPrefix(a.text, "http://") || strings.HasPrefix(a.text, "https://"):
			problems = append(problems, check.Fail("prefix-found",
				"Please remove the \"http(s)://\" prefix from the text content of the following anchor:\n\n"+a.href))
		}
	}
	return problems, nil
}

var GitURL = check.New("googlefonts/description/git_url", "Does DESCRIPTION file contain a upstream Git repo URL?").
	Rationale("The contents of the DESCRIPTION.en-us.html file are displayed on the Google Fonts website in the about section of each font family specimen page.\n\n" +
		"Since all of the Google Fonts collection is composed of libre-licensed fonts, this check enforces a policy that there must be a hypertext link in that page " +
		"directing users to the repository where the font project files are made available.").
	Proposal("https://github.com/fonttools/fontbakery/issues/2523").
	AppliesTo(DESC.Tag).
	RunOne(gitURL).
	MustBuild()

func gitURL(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	links, err := anchors(t.Contents)
	if err != nil {
		return nil, err
	}
	var problems []check.Status
	for _, a := range links {
		if strings.Contains(a.href, "://git") {
			problems = append(problems, check.Info("url-found", "Found a git repo URL: "+a.href))
		}
	}
	if len(problems) == 0 {
		return check.JustOneFail("lacks-git-url",
			"Please host your font project on a public Git repo (such as GitHub or GitLab) and place a link in the DESCRIPTION.en_us.html file."), nil
	}
	return problems, nil
}
