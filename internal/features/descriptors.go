package features

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"veritext/internal/textutil"
)

// Extract computes the full descriptor battery for text. The result contains
// only finite numeric values; every helper guards its divisions so degenerate
// inputs (no words, one sentence) produce zeros rather than NaN or Inf.
func Extract(text string) Vector {
	a := analyze(text)
	v := make(Vector, 48)

	addCounts(v, a)
	addDescriptive(v, a)
	addReadability(v, a)
	addDiversity(v, a)
	addEntropy(v, a)
	addStyle(v, a)
	addCoherence(v, a)

	for name, val := range v {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			v[name] = 0
		}
	}
	return v
}

func addCounts(v Vector, a *analysis) {
	v["n_characters"] = float64(len(a.text))
	v["n_letters"] = float64(a.letters)
	v["n_tokens"] = float64(len(a.words))
	v["n_sentences"] = float64(len(a.sentences))

	unique := make(map[string]struct{}, len(a.lowered))
	for _, w := range a.lowered {
		unique[w] = struct{}{}
	}
	v["n_unique_tokens"] = float64(len(unique))

	var syllables float64
	for _, s := range a.syllableCounts {
		syllables += s
	}
	v["n_syllables"] = syllables
}

func addDescriptive(v Vector, a *analysis) {
	v["token_length_mean"] = safeMean(a.wordLengths)
	v["token_length_median"] = safeMedian(a.wordLengths)
	v["token_length_std"] = safeStdDev(a.wordLengths)

	v["sentence_length_mean"] = safeMean(a.sentenceLengths)
	v["sentence_length_median"] = safeMedian(a.sentenceLengths)
	v["sentence_length_std"] = safeStdDev(a.sentenceLengths)

	v["syllables_per_token_mean"] = safeMean(a.syllableCounts)
	v["syllables_per_token_std"] = safeStdDev(a.syllableCounts)
}

func addReadability(v Vector, a *analysis) {
	words := float64(len(a.words))
	sentences := float64(len(a.sentences))
	if words == 0 || sentences == 0 {
		return
	}

	var syllables, polysyllables, longWords, complexWords float64
	for i := range a.words {
		syllables += a.syllableCounts[i]
		if a.syllableCounts[i] >= 3 {
			polysyllables++
			complexWords++
		}
		if a.wordLengths[i] > 6 {
			longWords++
		}
	}

	wordsPerSentence := words / sentences
	syllablesPerWord := syllables / words

	v["flesch_reading_ease"] = 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	v["flesch_kincaid_grade"] = 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	v["smog"] = 1.0430*math.Sqrt(polysyllables*30/sentences) + 3.1291
	v["gunning_fog"] = 0.4 * (wordsPerSentence + 100*complexWords/words)
	v["automated_readability_index"] = 4.71*(float64(a.letters)/words) + 0.5*wordsPerSentence - 21.43
	v["coleman_liau_index"] = 0.0588*(float64(a.letters)/words*100) - 0.296*(sentences/words*100) - 15.8
	v["lix"] = wordsPerSentence + 100*longWords/words
	v["rix"] = longWords / sentences
}

func addDiversity(v Vector, a *analysis) {
	n := float64(len(a.lowered))
	if n == 0 {
		return
	}

	counts := make(map[string]int, len(a.lowered))
	for _, w := range a.lowered {
		counts[w]++
	}
	unique := float64(len(counts))

	v["proportion_unique_tokens"] = unique / n
	v["root_ttr"] = unique / math.Sqrt(n)
	if n > 1 {
		v["log_ttr"] = math.Log(unique) / math.Log(n)
	}

	hapax := 0.0
	for _, c := range counts {
		if c == 1 {
			hapax++
		}
	}
	v["hapax_ratio"] = hapax / n

	v["mattr_50"] = movingAverageTTR(a.lowered, 50)
}

// movingAverageTTR computes the mean type-token ratio over sliding windows,
// which is less sensitive to document length than plain TTR.
func movingAverageTTR(tokens []string, window int) float64 {
	if len(tokens) == 0 {
		return 0
	}
	if len(tokens) <= window {
		unique := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			unique[tok] = struct{}{}
		}
		return float64(len(unique)) / float64(len(tokens))
	}

	counts := make(map[string]int, window)
	for _, tok := range tokens[:window] {
		counts[tok]++
	}
	total := float64(len(counts)) / float64(window)
	n := 1
	for i := window; i < len(tokens); i++ {
		out := tokens[i-window]
		counts[out]--
		if counts[out] == 0 {
			delete(counts, out)
		}
		counts[tokens[i]]++
		total += float64(len(counts)) / float64(window)
		n++
	}
	return total / float64(n)
}

func addEntropy(v Vector, a *analysis) {
	v["token_entropy"] = distributionEntropy(a.lowered)

	chars := make([]string, 0, len(a.text))
	for _, r := range strings.ToLower(a.text) {
		chars = append(chars, string(r))
	}
	v["char_entropy"] = distributionEntropy(chars)

	if len(a.lowered) > 1 {
		bigrams := make([]string, 0, len(a.lowered)-1)
		for i := 1; i < len(a.lowered); i++ {
			bigrams = append(bigrams, a.lowered[i-1]+" "+a.lowered[i])
		}
		v["bigram_entropy"] = distributionEntropy(bigrams)
	}
}

func distributionEntropy(items []string) float64 {
	if len(items) == 0 {
		return 0
	}
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item]++
	}
	probs := make([]float64, 0, len(counts))
	total := float64(len(items))
	for _, c := range counts {
		probs = append(probs, float64(c)/total)
	}
	return stat.Entropy(probs)
}

func addStyle(v Vector, a *analysis) {
	chars := float64(len(a.text))
	words := float64(len(a.words))
	sentences := float64(len(a.sentences))

	if chars > 0 {
		v["punctuation_ratio"] = float64(a.punctTotal) / chars
	}
	v["punctuation_variety"] = float64(len(a.punctuation))
	if sentences > 0 {
		v["question_ratio"] = float64(countRune(a.punctuation, '?')) / sentences
		v["exclamation_ratio"] = float64(countRune(a.punctuation, '!')) / sentences
	}
	if words > 0 {
		v["comma_density"] = float64(countRune(a.punctuation, ',')) / words
		quotes := countRune(a.punctuation, '"') + countRune(a.punctuation, '\'') +
			countRune(a.punctuation, '“') + countRune(a.punctuation, '”')
		v["quote_density"] = float64(quotes) / words
	}

	if words == 0 {
		return
	}

	var stops, longWords, poly, mono, pronouns, first, connectiveHits, contractions float64
	for i, w := range a.lowered {
		if _, ok := stopwords[w]; ok {
			stops++
		}
		if _, ok := personalPronouns[w]; ok {
			pronouns++
		}
		if _, ok := firstPerson[w]; ok {
			first++
		}
		if _, ok := connectives[w]; ok {
			connectiveHits++
		}
		if a.wordLengths[i] > 6 {
			longWords++
		}
		switch {
		case a.syllableCounts[i] >= 3:
			poly++
		case a.syllableCounts[i] == 1:
			mono++
		}
		for _, suffix := range contractionSuffixes {
			if strings.HasSuffix(w, suffix) {
				contractions++
				break
			}
		}
	}

	v["stopword_ratio"] = stops / words
	v["long_word_ratio"] = longWords / words
	v["polysyllable_ratio"] = poly / words
	v["monosyllable_ratio"] = mono / words
	v["pronoun_ratio"] = pronouns / words
	v["first_person_ratio"] = first / words
	v["contraction_rate"] = contractions / words * 100
	if sentences > 0 {
		v["connective_density"] = connectiveHits / sentences
	}
}

func addCoherence(v Vector, a *analysis) {
	v["sentence_start_repetition"] = sentenceStartRepetition(a)
	v["word_burstiness"] = wordBurstiness(a)

	if len(a.sentences) < 2 {
		return
	}
	prints := make([]*textutil.Fingerprint, len(a.sentences))
	for i, s := range a.sentences {
		prints[i] = textutil.NewFingerprint(s)
	}
	sims := make([]float64, 0, len(a.sentences)-1)
	for i := 1; i < len(prints); i++ {
		sims = append(sims, textutil.CosineSimilarity(prints[i-1], prints[i]))
	}
	v["sentence_cohesion_mean"] = safeMean(sims)
	v["sentence_cohesion_std"] = safeStdDev(sims)
}

// sentenceStartRepetition measures how often sentences begin with the same
// two tokens; machine text repeats openings more than human text does.
func sentenceStartRepetition(a *analysis) float64 {
	if len(a.sentences) < 2 {
		return 0
	}
	starts := make(map[string]int, len(a.sentences))
	for _, s := range a.sentences {
		words := wordPattern.FindAllString(s, -1)
		if len(words) < 2 {
			continue
		}
		key := strings.ToLower(words[0] + " " + words[1])
		starts[key]++
	}
	repeats := 0
	for _, c := range starts {
		if c > 1 {
			repeats += c - 1
		}
	}
	return float64(repeats) / float64(len(a.sentences))
}

// wordBurstiness computes the mean coefficient of variation of the gaps
// between repeated content-word occurrences. Human writing clusters topic
// words; evenly spread occurrences score near zero.
func wordBurstiness(a *analysis) float64 {
	positions := make(map[string][]int)
	for i, w := range a.lowered {
		if len(w) <= 4 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		positions[w] = append(positions[w], i)
	}

	var total float64
	count := 0
	for _, pos := range positions {
		if len(pos) < 2 {
			continue
		}
		gaps := make([]float64, len(pos)-1)
		for i := 1; i < len(pos); i++ {
			gaps[i-1] = float64(pos[i] - pos[i-1])
		}
		mean := safeMean(gaps)
		if mean > 0 {
			total += safePopStdDev(gaps) / mean
		}
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func countRune(counts map[rune]int, r rune) int {
	return counts[r]
}

func safeMean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

func safeStdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}

func safePopStdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean := stat.Mean(x, nil)
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(x)))
}

func safeMedian(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
