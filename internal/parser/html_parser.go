// Package parser extracts the page title and raw anchor elements from an
// HTML document. Hrefs are returned as written in the markup; scheme
// filtering and canonicalization happen downstream.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/linkparity/linkparity/internal/page"
)

// Result contains the parsed document data.
type Result struct {
	Title   string
	Anchors []page.Anchor
}

// Parse walks an HTML document and collects the title and every <a>
// element in document order.
func Parse(htmlContent []byte) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &Result{}
	traverse(doc, result)
	return result, nil
}

func traverse(n *html.Node, result *Result) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				result.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		case "a":
			parseAnchor(n, result)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		traverse(c, result)
	}
}

func parseAnchor(n *html.Node, result *Result) {
	a := page.Anchor{}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "href":
			a.Href = attr.Val
		case "aria-label":
			a.AriaLabel = attr.Val
		case "target":
			a.Target = attr.Val
		case "rel":
			a.Rel = attr.Val
		}
	}
	a.Text = extractText(n)
	result.Anchors = append(result.Anchors, a)
}

// extractText recursively collects the text content of a node.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := extractText(c); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
