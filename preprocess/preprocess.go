// Package preprocess handles the analysis of raw query and document text into index terms.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/hscells/go-unidecode"
)

// QueryProcessor is applied to text before it is tokenised.
type QueryProcessor func(text string) string

var (
	alphanum, _ = regexp.Compile("[^a-zA-Z0-9 ]+")
	numbers, _  = regexp.Compile("[0-9]")
	spaces, _   = regexp.Compile(" +")
)

// AlphaNum removes all non-alphanumeric characters from text.
func AlphaNum(text string) string {
	return spaces.ReplaceAllString(alphanum.ReplaceAllString(text, " "), " ")
}

// StripNumbers removes numbers from text.
func StripNumbers(text string) string {
	return numbers.ReplaceAllString(text, "")
}

// Lowercase transforms all capital letters to lowercase.
func Lowercase(text string) string {
	return strings.ToLower(text)
}

// Fold transliterates text into ASCII, so that accented characters survive AlphaNum.
func Fold(text string) string {
	return unidecode.Unidecode(text)
}

// Process applies each processor to text in order.
func Process(text string, processors ...QueryProcessor) string {
	for _, p := range processors {
		text = p(text)
	}
	return text
}
