package text

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "Hello world", []string{"Hello world"}},
		{"latin", "One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"cjk punctuation", "你好。 世界！ 再见？ 好", []string{"你好。", "世界！", "再见？", "好"}},
		{"no space after dot", "v1.2 is out. Yes", []string{"v1.2 is out.", "Yes"}},
		{"runs of whitespace", "A.   \n B", []string{"A.", "B"}},
		{"trailing space", "A. ", []string{"A."}},
		{"empty", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentences(tt.input))
		})
	}
}

func TestSplitPacksGreedily(t *testing.T) {
	text := "aaaa. bbbb. cccc. dddd."
	// each sentence is 5 runes; join spaces are not counted
	assert.Equal(t, []string{"aaaa. bbbb.", "cccc. dddd."}, Split(text, 10))
	assert.Equal(t, []string{"aaaa. bbbb. cccc.", "dddd."}, Split(text, 15))
	assert.Equal(t, []string{text}, Split(text, 300))
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	text := "가나다라마. 바사아자차."
	assert.Equal(t, []string{text}, Split(text, 12))
	assert.Equal(t, []string{"가나다라마.", "바사아자차."}, Split(text, 11))
}

func TestSplitCutsOverlongSentence(t *testing.T) {
	long := strings.Repeat("word ", 20) + "end."
	paras := Split(long, 22)
	assert.Greater(t, len(paras), 1)
	for _, p := range paras {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 22, p)
		assert.False(t, strings.HasPrefix(p, " ") || strings.HasSuffix(p, " "), p)
	}
	assert.Equal(t, strings.Join(strings.Fields(long), " "), strings.Join(paras, " "))
}

func TestSplitHardCutsWithoutBreaks(t *testing.T) {
	paras := Split(strings.Repeat("가", 25), 10)
	assert.Equal(t, []string{strings.Repeat("가", 10), strings.Repeat("가", 10), strings.Repeat("가", 5)}, paras)
}

func TestSplitDefaultsAndEmpty(t *testing.T) {
	assert.Empty(t, Split("", 300))
	assert.Equal(t, []string{"Hi."}, Split("Hi.", 0))
}
