// Package extract turns pasted job postings into plain text. Postings
// usually arrive as HTML copied out of a browser or a careers page, which
// needs stripping before it's useful as an LLM payload.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const maxInputBytes = 5 << 20

var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"iframe":   true,
	"svg":      true,
	"canvas":   true,
	"template": true,
}

var blockTags = map[string]bool{
	"p":       true,
	"div":     true,
	"li":      true,
	"section": true,
	"article": true,
	"h1":      true,
	"h2":      true,
	"h3":      true,
	"h4":      true,
	"h5":      true,
	"h6":      true,
	"header":  true,
	"footer":  true,
	"nav":     true,
	"br":      true,
	"ul":      true,
	"ol":      true,
}

// Text strips markup from r and returns whitespace-collapsed plain text.
// contentType, when known, drives charset detection and may be empty.
func Text(r io.Reader, contentType string) (string, error) {
	limited := io.LimitReader(r, maxInputBytes)
	decoded, err := charset.NewReader(limited, contentType)
	if err != nil {
		decoded = limited
	}

	tokenizer := html.NewTokenizer(decoded)
	skipDepth := 0
	var text strings.Builder

	writeNL := func() {
		s := text.String()
		if len(s) > 0 && s[len(s)-1] != '\n' {
			text.WriteByte('\n')
		}
	}

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if tokenizer.Err() == io.EOF {
				break
			}
			return "", fmt.Errorf("tokenizer error: %w", tokenizer.Err())
		}
		switch tt {
		case html.StartTagToken, html.EndTagToken:
			t := tokenizer.Token()
			name := strings.ToLower(t.Data)
			if skipTags[name] {
				if tt == html.StartTagToken {
					skipDepth++
				} else if skipDepth > 0 {
					skipDepth--
				}
			}
			if blockTags[name] {
				writeNL()
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			fields := bytes.Fields(tokenizer.Text())
			if len(fields) == 0 {
				continue
			}
			for i, f := range fields {
				if i > 0 {
					text.WriteByte(' ')
				}
				text.Write(f)
			}
			text.WriteByte('\n')
		}
	}

	out := strings.TrimSpace(text.String())
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out, nil
}

// FromString is Text over an in-memory posting. Input which doesn't look
// like markup passes through with only whitespace normalization.
func FromString(s string) (string, error) {
	return Text(strings.NewReader(s), "text/html; charset=utf-8")
}
