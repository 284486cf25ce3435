package fetch

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ExtractLinks parses raw (pre-strip) HTML and returns the absolute,
// normalised HTTP(S) URLs of every <a href> it contains, resolved against
// base. Malformed HTML yields no links rather than an error, matching the
// spec's total-function failure semantics for this stage.
func ExtractLinks(raw string, base *url.URL) []string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if link := resolveLink(base, attr.Val); link != "" {
					links = append(links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	if resolved.Path == "" {
		resolved.Path = "/"
	}
	return resolved.String()
}

// StripTags reduces raw HTML to its visible text content, one text node per
// line, skipping the contents of <script> and <style> elements. This is the
// "post-strip" text the spec tokenises for indexing.
func StripTags(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				b.WriteString(trimmed)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}
