package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// Normalize drops non-printable characters, trims the text and collapses inner whitespace.
func Normalize(text string) string {
	text = removeNonPrintable(text)
	text = strings.TrimSpace(text)
	return innerWhitespace.ReplaceAllString(text, " ")
}

// Text returns the normalized text of the first node of the selection, or "" if it is empty.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return Normalize(GetText(sel.Nodes[0]))
}

type Anchor struct {
	Name  string
	Title string
	Href  string
}

// GetAnchors returns every node of the selection that carries an href attribute.
func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href, ok := attr(n, "href")
		if !ok {
			continue
		}
		title, _ := attr(n, "title")
		anchors = append(anchors, Anchor{
			Name:  Normalize(GetText(n)),
			Title: strings.TrimSpace(title),
			Href:  strings.TrimSpace(href),
		})
	}
	return anchors
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
