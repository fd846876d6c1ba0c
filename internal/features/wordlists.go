package features

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var stopwords = wordSet(
	"a", "an", "the",
	"i", "you", "he", "she", "it", "we", "they",
	"me", "him", "her", "us", "them",
	"my", "your", "his", "its", "our", "their",
	"this", "that", "these", "those",
	"in", "on", "at", "to", "for", "of", "with", "by", "from", "about",
	"into", "through", "during", "before", "after", "above", "below",
	"and", "or", "but", "so", "yet", "nor",
	"if", "when", "while", "because", "although", "unless", "until",
	"is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "must", "can",
	"not", "no", "yes", "just", "only", "also", "very",
	"more", "most", "some", "any", "all", "many", "much",
	"other", "such", "than", "then", "now", "here", "there",
	"what", "which", "who", "whom", "whose", "where", "how", "why",
	"each", "every", "both", "few", "as", "up", "out", "off", "over",
)

var personalPronouns = wordSet(
	"i", "you", "he", "she", "it", "we", "they",
	"me", "him", "her", "us", "them",
	"my", "your", "his", "its", "our", "their",
	"mine", "yours", "hers", "ours", "theirs",
	"myself", "yourself", "himself", "herself", "itself",
	"ourselves", "yourselves", "themselves",
)

var firstPerson = wordSet(
	"i", "me", "my", "mine", "myself", "we", "us", "our", "ours", "ourselves",
)

// connectives are discourse markers that signal transitions between clauses
// or sentences; their density is a coarse discourse-structure proxy.
var connectives = wordSet(
	"however", "therefore", "moreover", "furthermore", "additionally",
	"consequently", "nevertheless", "nonetheless", "meanwhile", "instead",
	"otherwise", "similarly", "likewise", "accordingly", "thus", "hence",
	"besides", "indeed", "overall", "finally", "firstly", "secondly",
	"ultimately", "specifically", "notably", "conversely",
)

var contractionSuffixes = []string{
	"'s", "'re", "'ve", "'ll", "'d", "'m", "n't",
}
