// internal/scrape/scrape.go
//
// Headless-browser extraction of a Wordle board from a live page.
//
// The page is rendered in Chrome, given a moment to settle, and then a
// script walks the DOM for completed guess rows: elements that look like
// a row and contain exactly five evaluated tiles. Tile states map to the
// G/Y/K feedback alphabet. Rows still being typed carry states like
// "empty" or "tbd" and are skipped.
//
// Everything downstream of the browser lives in decodeRows so the parsing
// rules stay testable without Chrome installed.

package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/robalobadob/wordle-coach/internal/engine"
)

const (
	// DefaultTimeout bounds a whole scrape when the caller's context has
	// no deadline of its own.
	DefaultTimeout = 30 * time.Second

	// settleDelay gives client-rendered boards time to paint after load.
	settleDelay = 2 * time.Second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrNoBrowser is returned when no Chrome or Chromium binary is on PATH.
var ErrNoBrowser = errors.New("no chrome or chromium binary found in PATH")

var browserNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
}

// Row is one completed guess read off the page.
type Row struct {
	Guess    string `json:"guess"`
	Feedback string `json:"feedback"`
}

// Board is the scraped state of a Wordle page.
type Board struct {
	URL  string `json:"url"`
	Rows []Row  `json:"rows"`
}

// Scraper drives a headless browser to read Wordle boards.
type Scraper struct {
	timeout time.Duration
}

// New returns a Scraper. A zero timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scraper{timeout: timeout}
}

// BrowserAvailable reports whether a usable Chrome binary is installed.
func BrowserAvailable() bool {
	for _, name := range browserNames {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// boardScript collects completed guess rows from the page. It recognises
// the tile markup used by the NYT game and most clones: row containers
// whose class mentions "row" (or <game-row> elements) holding five tiles
// with a data-state / data-evaluation / evaluation attribute.
const boardScript = `(() => {
	const rows = [];
	const nodes = document.querySelectorAll('[class*="row" i], game-row');
	for (const row of nodes) {
		if (row.querySelector('[class*="row" i], game-row')) continue;
		const tiles = row.querySelectorAll('[data-state], [data-evaluation], [evaluation]');
		if (tiles.length !== 5) continue;
		let guess = '';
		let feedback = '';
		for (const tile of tiles) {
			const state = (tile.getAttribute('data-state') ||
				tile.getAttribute('data-evaluation') ||
				tile.getAttribute('evaluation') || '').toLowerCase();
			if (state === 'correct') feedback += 'G';
			else if (state === 'present') feedback += 'Y';
			else if (state === 'absent') feedback += 'K';
			else { feedback = ''; break; }
			const letter = (tile.getAttribute('letter') ||
				tile.getAttribute('data-letter') ||
				tile.textContent || '').trim().toLowerCase();
			if (letter.length !== 1) { feedback = ''; break; }
			guess += letter;
		}
		if (guess.length !== 5 || feedback.length !== 5) continue;
		rows.push({guess: guess, feedback: feedback});
	}
	return JSON.stringify(rows);
})()`

// Board navigates to rawURL and returns the completed rows found there.
func (s *Scraper) Board(ctx context.Context, rawURL string) (*Board, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if !BrowserAvailable() {
		return nil, ErrNoBrowser
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var raw string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(u.String()),
		chromedp.Sleep(settleDelay),
		chromedp.Evaluate(boardScript, &raw),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", u.Host, err)
	}

	rows, err := decodeRows(raw)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", u.Host, err)
	}
	return &Board{URL: rawURL, Rows: rows}, nil
}

// decodeRows parses the script output and verifies every row against the
// engine's word and feedback rules, canonicalising both as it goes.
func decodeRows(raw string) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("parse board rows: %w", err)
	}
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		guess, err := engine.NormalizeWord(r.Guess)
		if err != nil {
			return nil, fmt.Errorf("board row %d: %w", i+1, err)
		}
		fb, err := engine.ParseFeedback(r.Feedback)
		if err != nil {
			return nil, fmt.Errorf("board row %d: %w", i+1, err)
		}
		out = append(out, Row{Guess: guess, Feedback: fb.String()})
	}
	return out, nil
}

// validateURL accepts absolute http(s) URLs only.
func validateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", raw)
	}
	return u, nil
}
