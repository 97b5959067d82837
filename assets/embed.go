// assets/embed.go
//
// Embedded default word lists. answers.txt holds the candidate secrets;
// allowed.txt holds extra valid guesses beyond the answers. Lines starting
// with '#' are comments. The words package unions the two, so allowed.txt
// does not need to repeat the answers.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// readLines returns the non-comment, non-blank lines of an embedded file,
// lowercased.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// AnswersList returns the embedded candidate answers.
func AnswersList() ([]string, error) {
	return readLines("answers.txt")
}

// AllowedList returns the embedded extra guess words.
func AllowedList() ([]string, error) {
	return readLines("allowed.txt")
}
