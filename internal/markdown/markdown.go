// Package markdown turns note source text into preview markup.
//
// The conversion is a fixed sequence of textual rewrites, not a parser. Each stage sees the
// output of the previous one, so the order of stages is part of the contract:
//
//  1. escape & < >
//  2. fenced code blocks
//  3. inline code
//  4. headings (#, ##, ###)
//  5. bold, italic, strikethrough
//  6. blockquotes (one element per quoted line)
//  7. checkbox glyphs
//  8. list items, merged into one list per run of adjacent items
//  9. links
//  10. horizontal rules
//  11. paragraphs (split on blank lines)
//  12. cleanup (drop empty paragraphs, keep block elements out of paragraphs)
//
// Code produced by stages 2 and 3 is held back as an opaque token until the end, so later
// stages never rewrite inside it.
package markdown

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	CheckedGlyph   = "☑"
	UncheckedGlyph = "☐"
)

var (
	reFence      = regexp.MustCompile("```([\\s\\S]*?)```")
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reH3         = regexp.MustCompile(`(?m)^### (.+)$`)
	reH2         = regexp.MustCompile(`(?m)^## (.+)$`)
	reH1         = regexp.MustCompile(`(?m)^# (.+)$`)
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.+?)\*`)
	reStrike     = regexp.MustCompile(`~~(.+?)~~`)
	reQuote      = regexp.MustCompile(`(?m)^&gt; (.+)$`)
	reChecked    = regexp.MustCompile(`(?i)\[x\]`)
	reUnchecked  = regexp.MustCompile(`\[ \]`)
	reListItem   = regexp.MustCompile(`(?m)^- (.+)$`)
	reListRun    = regexp.MustCompile(`(?:<li>.*</li>\n)*<li>.*</li>`)
	reLink       = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)
	reRule       = regexp.MustCompile(`(?m)^---$`)
	reParagraph  = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	reToken      = regexp.MustCompile("\x00([FC])(\\d+)\x00")
)

var blockPrefixes = []string{"<h1>", "<h2>", "<h3>", "<pre>", "<ul>", "<blockquote>", "<hr>", "\x00F"}

// Render converts Markdown source into markup. It never fails; input it does not understand is
// passed through (escaped).
func Render(source string) string {
	r := &renderer{}
	html := escape(source)
	html = r.fencedCode(html)
	html = r.inlineCode(html)
	html = headings(html)
	html = emphasis(html)
	html = blockquotes(html)
	html = checkboxes(html)
	html = lists(html)
	html = links(html)
	html = rules(html)
	html = paragraphs(html)
	html = cleanup(html)
	return r.restore(html)
}

// Stats returns the character (rune) and word counts shown under the editor.
func Stats(source string) (chars, words int) {
	return utf8.RuneCountInString(source), len(strings.Fields(source))
}

// renderer holds code spans pulled out of the text while the remaining stages run.
type renderer struct {
	code []string
}

func (r *renderer) hold(kind byte, html string) string {
	r.code = append(r.code, html)
	return "\x00" + string(kind) + strconv.Itoa(len(r.code)-1) + "\x00"
}

func (r *renderer) restore(html string) string {
	if len(r.code) == 0 {
		return html
	}
	return reToken.ReplaceAllStringFunc(html, func(tok string) string {
		m := reToken.FindStringSubmatch(tok)
		i, err := strconv.Atoi(m[2])
		if err != nil || i < 0 || i >= len(r.code) {
			return ""
		}
		return r.code[i]
	})
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "�")
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func (r *renderer) fencedCode(s string) string {
	return reFence.ReplaceAllStringFunc(s, func(m string) string {
		body := reFence.FindStringSubmatch(m)[1]
		return r.hold('F', "<pre><code>"+body+"</code></pre>")
	})
}

func (r *renderer) inlineCode(s string) string {
	return reInlineCode.ReplaceAllStringFunc(s, func(m string) string {
		body := reInlineCode.FindStringSubmatch(m)[1]
		return r.hold('C', "<code>"+body+"</code>")
	})
}

func headings(s string) string {
	s = reH3.ReplaceAllString(s, "<h3>${1}</h3>")
	s = reH2.ReplaceAllString(s, "<h2>${1}</h2>")
	return reH1.ReplaceAllString(s, "<h1>${1}</h1>")
}

func emphasis(s string) string {
	s = reBold.ReplaceAllString(s, "<strong>${1}</strong>")
	s = reItalic.ReplaceAllString(s, "<em>${1}</em>")
	return reStrike.ReplaceAllString(s, "<del>${1}</del>")
}

// blockquotes matches the escaped form of ">" since escaping has already run.
func blockquotes(s string) string {
	return reQuote.ReplaceAllString(s, "<blockquote>${1}</blockquote>")
}

func checkboxes(s string) string {
	s = reChecked.ReplaceAllString(s, CheckedGlyph)
	return reUnchecked.ReplaceAllString(s, UncheckedGlyph)
}

func lists(s string) string {
	s = reListItem.ReplaceAllString(s, "<li>${1}</li>")
	return reListRun.ReplaceAllStringFunc(s, func(run string) string {
		return "<ul>" + strings.ReplaceAll(run, "</li>\n<li>", "</li><li>") + "</ul>"
	})
}

func links(s string) string {
	return reLink.ReplaceAllStringFunc(s, func(m string) string {
		sub := reLink.FindStringSubmatch(m)
		return `<a href="` + safeHref(sub[2]) + `" target="_blank">` + sub[1] + `</a>`
	})
}

func safeHref(url string) string {
	scheme := strings.ToLower(strings.TrimSpace(url))
	for _, bad := range []string{"javascript:", "vbscript:", "data:"} {
		if strings.HasPrefix(scheme, bad) {
			return "#"
		}
	}
	return strings.ReplaceAll(url, `"`, "%22")
}

func rules(s string) string {
	return reRule.ReplaceAllString(s, "<hr>")
}

func paragraphs(s string) string {
	return "<p>" + strings.ReplaceAll(s, "\n\n", "</p><p>") + "</p>"
}

// cleanup drops empty paragraphs and lifts block-level lines out of the paragraph that wraps
// them; the text lines around a lifted block stay in their own paragraphs.
func cleanup(s string) string {
	return reParagraph.ReplaceAllStringFunc(s, func(p string) string {
		inner := reParagraph.FindStringSubmatch(p)[1]
		var b strings.Builder
		var run []string
		flush := func() {
			text := strings.Join(run, "\n")
			run = run[:0]
			if strings.TrimSpace(text) == "" {
				return
			}
			b.WriteString("<p>")
			b.WriteString(text)
			b.WriteString("</p>")
		}
		for _, line := range strings.Split(inner, "\n") {
			if isBlock(line) {
				flush()
				b.WriteString(line)
				continue
			}
			run = append(run, line)
		}
		flush()
		return b.String()
	})
}

func isBlock(line string) bool {
	for _, p := range blockPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
