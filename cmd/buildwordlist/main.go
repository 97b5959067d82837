// Package main builds five-letter word lists from raw frequency dumps
// (one "word [count]" pair per line). Words below the frequency cutoff
// are dropped; the survivors are written one per line, input order kept,
// ready to serve as WORDS_ANSWERS_FILE or WORDS_ALLOWED_FILE.
//
// Usage:
//
//	buildwordlist -in unigrams.txt -out assets/answers.txt -min 500000
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/robalobadob/wordle-coach/internal/words"
)

func main() {
	var (
		in  = flag.String("in", "", "frequency list to read (default stdin)")
		out = flag.String("out", "", "file to write (default stdout)")
		min = flag.Int("min", 0, "minimum frequency to keep a word")
	)
	flag.Parse()

	r := os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		r = f
	}

	list, err := words.FromFrequencyList(r, *min)
	if err != nil {
		fatal(err)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	for _, word := range list {
		fmt.Fprintln(bw, word)
	}
	if err := bw.Flush(); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d words\n", len(list))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
