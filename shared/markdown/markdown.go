// Package markdown renders message bodies to sanitized HTML for clients
// that ask for render=html. Only a small inline subset is enabled: code
// spans, fenced code, emphasis and strikethrough. Links and raw HTML stay
// literal text.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Matches @handle outside of tags once the body is HTML.
var mentionRegex = regexp.MustCompile(`(^|[^\w@/])@([a-z0-9]+)`)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile("^mention$")).OnElements("span")

	return &Renderer{md: md, policy: policy}
}

// Render converts text to HTML. On a goldmark failure the escaped plain text
// is returned so a message is never dropped from a page.
func (r *Renderer) Render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return r.policy.Sanitize(strings.ReplaceAll(text, "<", "&lt;"))
	}
	out := highlightMentions(strings.TrimSpace(buf.String()))
	return r.policy.Sanitize(out)
}

func highlightMentions(s string) string {
	// Skip code blocks, mentions there are not notifications either.
	const tag = `$1<span class="mention">@$2</span>`
	var b strings.Builder
	for {
		start := strings.Index(s, "<code")
		end := -1
		if start >= 0 {
			end = strings.Index(s[start:], "</code>")
		}
		if end < 0 {
			b.WriteString(mentionRegex.ReplaceAllString(s, tag))
			return b.String()
		}
		end += start + len("</code>")
		b.WriteString(mentionRegex.ReplaceAllString(s[:start], tag))
		b.WriteString(s[start:end])
		s = s[end:]
	}
}
