package classifier

import "regexp"

// TestKeywords are matched as lowercase substrings of the title and body.
// "test" must stay first so it is the reported word for titles like "Test Article".
var TestKeywords = []string{
	"test",
	"testing",
	"qa",
	"dummy",
	"lorem ipsum",
	"placeholder",
	"staging",
	"draft",
	"internal",
	"demo",
	"mock",
	"sample article",
	"test article",
	"do not publish",
	"do not use",
	"delete me",
	"deleteme",
	"temporary",
	"debug",
	"sandbox",
	"fake",
	"asdf",
	"xxx",
	"untitled",
	"tbd",
}

// FillerWords flag titles that start with throwaway text
var FillerWords = []string{
	"foo",
	"bar",
	"baz",
	"hello",
	"hi",
	"abc",
	"xyz",
	"new article",
	"blah",
	"aaa",
	"sample",
}

// KeyboardPatterns are common keyboard-mash sequences
var KeyboardPatterns = []string{"12345", "abcde", "qwert"}

// BodyScanLimit is the number of body characters searched for keywords
const BodyScanLimit = 200

// MinBodyLength is the shortest body that is not treated as a test stub
const MinBodyLength = 10

// MinCleanedLength is the shortest cleaned body that is not treated as empty
const MinCleanedLength = 20

// MinRepeatedRun is the run length of one character that marks a title as junk
const MinRepeatedRun = 5

var (
	testThenDigits = regexp.MustCompile(`test\d+`)
	digitsThenTest = regexp.MustCompile(`\d+test`)
)

// suspiciousIDPrefixes and suspiciousIDSequences mark generated ids
var (
	suspiciousIDPrefixes  = []string{"999", "000"}
	suspiciousIDSequences = []string{"123456789", "987654321"}
)
