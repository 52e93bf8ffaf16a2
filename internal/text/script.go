// Package text prepares script files for narration.
package text

import (
	"regexp"
	"strings"
)

var inline struct {
	image      *regexp.Regexp // ![alt](url)
	link       *regexp.Regexp // [text](url)
	bold       *regexp.Regexp // **text**
	italic     *regexp.Regexp // *text*
	strike     *regexp.Regexp // ~~text~~
	code       *regexp.Regexp // `code`
	listLeader *regexp.Regexp // - item, 1. item (up to 3 digits, so years survive)
	quote      *regexp.Regexp // > quote
	spaces     *regexp.Regexp
}

func init() {
	inline.image = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	inline.link = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	// Emphasis only counts outside words: 2*3*4 stays. Underscore forms are
	// left alone since identifiers like __init__ are spoken as written.
	inline.bold = regexp.MustCompile(`(^|[^\p{L}\p{N}*])\*\*([^\s*][^\n]*?)\*\*($|[^\p{L}\p{N}*])`)
	inline.italic = regexp.MustCompile(`(^|[^\p{L}\p{N}*])\*([^\s*][^*\n]*?)\*($|[^\p{L}\p{N}*])`)
	inline.strike = regexp.MustCompile(`~~([^\n~]+)~~`)
	inline.code = regexp.MustCompile("`([^`\n]+)`")
	inline.listLeader = regexp.MustCompile(`^([*\-+]|\d{1,3}[.)])\s+`)
	inline.quote = regexp.MustCompile(`^(>\s*)+`)
	inline.spaces = regexp.MustCompile(`\s{2,}`)
}

// CleanScript turns a markdown or plain-text script into one line of
// speakable text. Headings (#) and rules (---) are dropped, blank lines
// are skipped, inline markup is stripped and the rest is joined by spaces.
func CleanScript(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			continue
		}
		line = stripInline(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

func stripInline(line string) string {
	line = inline.quote.ReplaceAllString(line, "")
	line = inline.listLeader.ReplaceAllString(line, "")
	line = inline.image.ReplaceAllString(line, "$1")
	line = inline.link.ReplaceAllString(line, "$1")
	line = unwrap(inline.bold, line)
	line = inline.strike.ReplaceAllString(line, "$1")
	line = unwrap(inline.italic, line)
	line = inline.code.ReplaceAllString(line, "$1")
	line = inline.spaces.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// unwrap drops emphasis delimiters and keeps the boundary characters.
// Adjacent spans share a boundary, so it repeats until nothing matches.
func unwrap(re *regexp.Regexp, line string) string {
	for {
		next := re.ReplaceAllString(line, "${1}${2}${3}")
		if next == line {
			return line
		}
		line = next
	}
}

// Preview returns at most n runes of s, for progress lines.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
