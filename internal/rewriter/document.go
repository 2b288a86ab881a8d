package rewriter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ProcessDocument parses an HTML document, rewrites every anchor whose
// href is a valid absolute http(s) URL to its shortened form, and
// re-serializes the document. Anchors are visited in document order and
// rewritten independently.
func (r *Rewriter) ProcessDocument(ctx context.Context, document string) (string, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	anchors := collectAnchors(root)

	targets := make([]string, 0, len(anchors))
	for _, anchor := range anchors {
		if href, ok := anchorHref(anchor); ok {
			targets = append(targets, href)
		}
	}

	replacements, err := r.Rewrite(ctx, targets)
	if err != nil {
		return "", err
	}

	for _, anchor := range anchors {
		href, ok := anchorHref(anchor)
		if !ok {
			continue
		}

		if replacement, ok := replacements[href]; ok {
			setAnchorHref(anchor, replacement)
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	return buf.String(), nil
}

// collectAnchors walks the tree depth-first, which matches document order
// for anchor elements.
func collectAnchors(root *html.Node) []*html.Node {
	var anchors []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			anchors = append(anchors, n)
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(root)

	return anchors
}

func anchorHref(anchor *html.Node) (string, bool) {
	for _, attr := range anchor.Attr {
		if attr.Key == "href" {
			return attr.Val, true
		}
	}

	return "", false
}

func setAnchorHref(anchor *html.Node, href string) {
	for i := range anchor.Attr {
		if anchor.Attr[i].Key == "href" {
			anchor.Attr[i].Val = href

			return
		}
	}
}
