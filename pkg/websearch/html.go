package websearch

import (
	"strings"

	"golang.org/x/net/html"
)

// tags whose text content is noise, not article body
var skippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
	"aside":  true,
	"noscript": true,
}

// StripHTML extracts the visible text from an HTML document, collapsing
// whitespace. A non-zero limit truncates the result to that many bytes.
func StripHTML(content string, limit int) string {
	tokenizer := html.NewTokenizer(strings.NewReader(content))

	var chunks []string
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return joinAndCap(chunks, limit)
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTags[string(name)] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTags[string(name)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				chunks = append(chunks, text)
			}
		}
	}
}

func joinAndCap(chunks []string, limit int) string {
	text := strings.Join(chunks, " ")
	if limit > 0 && len(text) > limit {
		text = text[:limit]
	}
	return text
}
