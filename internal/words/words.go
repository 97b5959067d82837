// internal/words/words.go
//
// Word corpus management for the solving engine.
//
// Responsibilities:
//   - Load the answer and allowed-guess lists from environment-provided
//     files or fall back to the embedded defaults in assets/.
//   - Maintain sets for quick lookups (answers only, answers ∪ guesses).
//   - Expose the ordered answer list and the guess pool the ranker sweeps.
//
// Word lists:
//   - "answers": candidate secrets (exactly 5 lowercase letters).
//   - "allowed": extra valid guesses; the pool is always answers ∪ allowed.
//
// Initialization behavior (Init):
//  1. If WORDS_ANSWERS_FILE and WORDS_ALLOWED_FILE are both set,
//     load answers from the first and allowed guesses from the second.
//  2. If only one of the two is set, that file serves as both lists.
//  3. If neither is set, fall back to the embedded assets lists.
//
// Constraints:
//   - Words are normalized to lowercase and deduplicated.
//   - Anything that is not exactly 5 ASCII letters a-z is skipped.
//   - Initialization runs once (sync.Once); accessors trigger it lazily.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/wordle-coach/assets"
)

var (
	initOnce   sync.Once
	answers    []string            // candidate secrets, load order
	guessPool  []string            // answers ∪ allowed, answers first
	answersSet map[string]struct{} // answers only
	allowedSet map[string]struct{} // answers ∪ allowed
	corpusSrc  string              // "embedded" or the configured paths
	initialErr error
)

// Init loads the word lists exactly once. Returns an error if loading
// fails or the answers list ends up empty.
func Init() error {
	initOnce.Do(func() {
		var ansList, allowList []string

		answersPath := os.Getenv("WORDS_ANSWERS_FILE")
		allowedPath := os.Getenv("WORDS_ALLOWED_FILE")

		switch {
		// Case 1: both lists provided.
		case answersPath != "" && allowedPath != "":
			var err error
			ansList, err = readWordFile(answersPath)
			if err != nil {
				initialErr = err
				return
			}
			allowList, err = readWordFile(allowedPath)
			if err != nil {
				initialErr = err
				return
			}
			corpusSrc = fmt.Sprintf("answers=%s allowed=%s", answersPath, allowedPath)

		// Case 2: a single file serves as both lists.
		case answersPath != "":
			var err error
			ansList, err = readWordFile(answersPath)
			if err != nil {
				initialErr = err
				return
			}
			allowList = ansList
			corpusSrc = fmt.Sprintf("answers=%s", answersPath)
		case allowedPath != "":
			var err error
			allowList, err = readWordFile(allowedPath)
			if err != nil {
				initialErr = err
				return
			}
			ansList = allowList
			corpusSrc = fmt.Sprintf("allowed=%s", allowedPath)

		// Case 3: embedded defaults.
		default:
			var err error
			ansList, err = assets.AnswersList()
			if err != nil {
				initialErr = err
				return
			}
			allowList, err = assets.AllowedList()
			if err != nil {
				initialErr = err
				return
			}
			corpusSrc = "embedded"
		}

		build(ansList, allowList)

		if len(answers) == 0 {
			initialErr = errors.New("words: answers list is empty")
		}
	})
	return initialErr
}

// build installs the deduplicated lists and lookup sets.
func build(ansList, allowList []string) {
	seen := make(map[string]struct{}, len(ansList)+len(allowList))

	var ans []string
	for _, w := range ansList {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		ans = append(ans, w)
	}

	pool := append([]string(nil), ans...)
	for _, w := range allowList {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}

	answers = ans
	guessPool = pool
	answersSet = toSet(ans)
	allowedSet = seen
}

// readWordFile loads one word per line from a file, lowercases, trims, and
// keeps only valid 5-letter alphabetic words. '#' lines are comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(strings.ToLower(sc.Text()))
		if strings.HasPrefix(w, "#") {
			continue
		}
		if len(w) == 5 && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// FromFrequencyList parses "word frequency" lines and keeps five-letter
// words whose frequency is at least minFreq. Lines without a frequency
// column always pass the cutoff; rows with an unparseable frequency are
// skipped. Output preserves input order and is deduplicated.
func FromFrequencyList(r io.Reader, minFreq int) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		w := strings.ToLower(fields[0])
		if len(w) != 5 || !isAlpha(w) {
			continue
		}
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < minFreq {
				continue
			}
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out, sc.Err()
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Answers returns the candidate secrets. Callers must treat the slice as
// read-only; sessions copy it before filtering.
func Answers() []string {
	_ = Init()
	return answers
}

// GuessPool returns every guessable word (answers ∪ allowed). Read-only.
func GuessPool() []string {
	_ = Init()
	return guessPool
}

// IsAllowed reports whether w is a valid guess.
func IsAllowed(w string) bool {
	_ = Init()
	_, ok := allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is a candidate secret.
func IsAnswer(w string) bool {
	_ = Init()
	_, ok := answersSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, guess pool).
func Stats() (answersCount int, poolCount int) {
	_ = Init()
	return len(answers), len(guessPool)
}

// Source describes where the active lists came from: "embedded" for the
// compiled-in defaults, otherwise the configured file paths.
func Source() string {
	_ = Init()
	return corpusSrc
}
