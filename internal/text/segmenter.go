package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultMaxChars = 300

// Split breaks text into paragraphs of whole sentences. Sentences are
// packed greedily; a paragraph is closed when the next sentence would push
// its rune count past maxChars (join spaces are not counted). Sentences
// that alone exceed maxChars are cut further first.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var (
		paragraphs []string
		current    []string
		currentLen int
	)
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
			currentLen = 0
		}
	}

	for _, sentence := range Sentences(text) {
		for _, piece := range cutLong(sentence, maxChars) {
			n := utf8.RuneCountInString(piece)
			if currentLen+n > maxChars && len(current) > 0 {
				flush()
			}
			current = append(current, piece)
			currentLen += n
		}
	}
	flush()
	return paragraphs
}

// Sentences splits after terminal punctuation that is followed by
// whitespace. The whitespace is consumed; punctuation stays with its sentence.
func Sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) || len(out) == 0 {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	default:
		return false
	}
}

func isSoftBreak(r rune) bool {
	switch r {
	case ',', ';', ':', '，', '；', '：', '、':
		return true
	default:
		return unicode.IsSpace(r)
	}
}

// cutLong splits an over-long sentence at the last soft break inside the
// bound, or hard at maxChars runes when there is none.
func cutLong(sentence string, maxChars int) []string {
	runes := []rune(sentence)
	var out []string
	for len(runes) > maxChars {
		cut := -1
		for i := maxChars - 1; i > 0; i-- {
			if isSoftBreak(runes[i]) {
				cut = i + 1
				break
			}
		}
		if cut <= 0 {
			cut = maxChars
		}
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			out = append(out, piece)
		}
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
