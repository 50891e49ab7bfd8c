package carousel

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxHeadlineLen is the longest headline the splitter emits, ellipsis included.
	MaxHeadlineLen = 50
	// minSentenceLen drops fragments such as "e.g" or stray initials.
	minSentenceLen = 10
)

var (
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
	firstFragment = regexp.MustCompile(`[.!?]`)
)

// Split partitions text into n headline/body pairs without any model call.
// Strategies are tried in order: paragraphs (blank-line separated), then
// sentences, then plain word buckets. It returns exactly n pairs whenever the
// text holds at least n words, and is deterministic for a given input.
func Split(text string, n int) []Pair {
	if n <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	if paragraphs := splitParagraphs(text); len(paragraphs) >= n {
		return fromParagraphs(paragraphs[:n])
	}
	if sentences := splitSentences(text); len(sentences) >= n {
		return fromSentences(sentences, n)
	}
	return fromWords(strings.Fields(text), n)
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceBreak.Split(text, -1) {
		if s = strings.TrimSpace(s); len([]rune(s)) > minSentenceLen {
			out = append(out, s)
		}
	}
	return out
}

// fromParagraphs uses each paragraph's first line as the headline and the
// remaining lines as the body. A single-line paragraph with several
// sentences is split after its first sentence; a single sentence gets a
// "Key Point k" headline and keeps the whole paragraph as its body.
func fromParagraphs(paragraphs []string) []Pair {
	pairs := make([]Pair, len(paragraphs))
	for i, p := range paragraphs {
		var lines []string
		for _, l := range strings.Split(p, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}

		if len(lines) > 1 {
			pairs[i] = Pair{Headline: TruncateHeadline(lines[0]), Content: strings.Join(lines[1:], "\n")}
			continue
		}

		if loc := sentenceBreak.FindStringIndex(p); loc != nil && loc[1] < len(p) {
			head := strings.TrimSpace(p[:loc[1]])
			rest := strings.TrimSpace(p[loc[1]:])
			if head != "" && rest != "" {
				pairs[i] = Pair{Headline: TruncateHeadline(head), Content: rest}
				continue
			}
		}
		pairs[i] = Pair{Headline: fmt.Sprintf("Key Point %d", i+1), Content: p}
	}
	return pairs
}

func fromSentences(sentences []string, n int) []Pair {
	buckets := bucket(len(sentences), n)
	pairs := make([]Pair, 0, n)
	for _, b := range buckets {
		group := sentences[b[0]:b[1]]
		pairs = append(pairs, Pair{
			Headline: TruncateHeadline(group[0]),
			Content:  strings.Join(group, ". ") + ".",
		})
	}
	return pairs
}

func fromWords(words []string, n int) []Pair {
	buckets := bucket(len(words), n)
	pairs := make([]Pair, 0, len(buckets))
	for i, b := range buckets {
		text := strings.Join(words[b[0]:b[1]], " ")
		headline := strings.TrimSpace(firstFragment.Split(text, 2)[0])
		if headline == "" {
			headline = fmt.Sprintf("Slide %d", i+1)
		}
		pairs = append(pairs, Pair{Headline: TruncateHeadline(headline), Content: text})
	}
	return pairs
}

// bucket splits total items into at most n contiguous [start, end) ranges.
// Ranges hold ceil(total/n) items with a shorter tail; when that would leave
// trailing buckets empty, items are spread evenly instead so that every one
// of the n buckets is filled. Fewer than n items yield one bucket per item.
func bucket(total, n int) [][2]int {
	if total == 0 {
		return nil
	}
	if total < n {
		n = total
	}

	size := (total + n - 1) / n
	out := make([][2]int, 0, n)
	if (n-1)*size < total {
		for start := 0; start < total && len(out) < n; start += size {
			out = append(out, [2]int{start, min(start+size, total)})
		}
		return out
	}

	base, extra := total/n, total%n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		out = append(out, [2]int{start, start + size})
		start += size
	}
	return out
}

// TruncateHeadline cuts text longer than MaxHeadlineLen runes to 47 runes
// plus "...".
func TruncateHeadline(s string) string {
	r := []rune(s)
	if len(r) <= MaxHeadlineLen {
		return s
	}
	return string(r[:MaxHeadlineLen-3]) + "..."
}
