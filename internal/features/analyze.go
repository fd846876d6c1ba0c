package features

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	wordPattern     = regexp.MustCompile(`[a-zA-Z']+`)
	sentencePattern = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
)

// analysis holds the tokenized view of a document that every descriptor
// group reads from, so the text is scanned once.
type analysis struct {
	text      string
	words     []string
	lowered   []string
	sentences []string

	letters     int
	punctuation map[rune]int
	punctTotal  int

	wordLengths     []float64
	sentenceLengths []float64
	syllableCounts  []float64
}

func analyze(text string) *analysis {
	a := &analysis{
		text:        text,
		punctuation: make(map[rune]int),
	}

	a.words = wordPattern.FindAllString(text, -1)
	a.lowered = make([]string, len(a.words))
	a.wordLengths = make([]float64, len(a.words))
	a.syllableCounts = make([]float64, len(a.words))
	for i, w := range a.words {
		a.lowered[i] = strings.ToLower(w)
		a.wordLengths[i] = float64(len(w))
		a.syllableCounts[i] = float64(countSyllables(a.lowered[i]))
	}

	a.sentences = splitSentences(text)
	a.sentenceLengths = make([]float64, len(a.sentences))
	for i, s := range a.sentences {
		a.sentenceLengths[i] = float64(len(wordPattern.FindAllString(s, -1)))
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			a.letters++
		case unicode.IsPunct(r):
			a.punctuation[r]++
			a.punctTotal++
		}
	}

	return a
}

func splitSentences(text string) []string {
	parts := sentencePattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// countSyllables estimates syllables by counting vowel groups with a
// silent-e adjustment. Every word counts as at least one syllable.
func countSyllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := isVowel(r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
