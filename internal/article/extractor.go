package article

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const defaultUserAgent = "news-ingestion-api/1.0 (+https://github.com/savramidis/news-ingestion-api)"

// Extractor fetches URLs and pulls readable text out of HTML pages.
type Extractor struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// NewExtractor returns an extractor using client for all requests. A nil
// client gets a 30 second timeout default.
func NewExtractor(client *http.Client, logger zerolog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Extractor{client: client, userAgent: defaultUserAgent, logger: logger}
}

// Extract downloads pageURL and returns its readable content. Non-2xx
// statuses, non-HTML content types and pages without any text are errors.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Data, error) {
	e.logger.Info().Str("url", pageURL).Msg("extracting article text")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", pageURL, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return nil, fmt.Errorf("fetch %s: unsupported content type %q", pageURL, ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}

	title, text := parsePage(body)
	if text == "" {
		return nil, fmt.Errorf("no article text found at %s", pageURL)
	}

	e.logger.Info().Str("url", pageURL).Str("title", title).Int("chars", len(text)).Msg("extracted article")
	return &Data{URL: pageURL, Title: title, Text: text}, nil
}

func isHTMLContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// skipTags are subtrees that never contain article text.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"form":     true,
	"iframe":   true,
}

// blockTags separate text into lines when flattening the tree.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "figcaption": true, "tr": true,
	"br": true, "pre": true,
}

// parsePage extracts the document title and flattened body text. The content
// root is <main> when present, then <article>, then <body>, matching where
// publishers put the story.
func parsePage(body []byte) (title, text string) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil || root == nil {
		return "", ""
	}

	title = strings.TrimSpace(nodeText(findElement(root, "title")))

	content := findElement(root, "main")
	if content == nil {
		content = findElement(root, "article")
	}
	if content == nil {
		content = findElement(root, "body")
	}
	if content == nil {
		return title, ""
	}

	var b strings.Builder
	flattenText(&b, content)
	text = collapseWhitespace(b.String())

	if title == "" {
		title = strings.TrimSpace(nodeText(findElement(content, "h1")))
	}
	return title, text
}

func findElement(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func flattenText(b *strings.Builder, n *html.Node) {
	isBlock := false
	switch n.Type {
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if skipTags[name] {
			return
		}
		isBlock = blockTags[name]
		if isBlock {
			b.WriteByte('\n')
		}
	case html.TextNode:
		b.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenText(b, c)
	}
	if isBlock {
		b.WriteByte('\n')
	}
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return b.String()
}

// collapseWhitespace trims every line, squeezes internal whitespace runs and
// drops blank lines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
