package service

import (
	"regexp"
	"strings"
	"unicode"
)

// ChunkConfig controls how document text is split into knowledge chunks.
type ChunkConfig struct {
	TargetChars int
	MinChars    int
	MaxChars    int
	Overlap     int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		TargetChars: 800,
		MinChars:    200,
		MaxChars:    1200,
		Overlap:     100,
	}
}

// Chunk is one bounded piece of a document's normalized text.
type Chunk struct {
	Text  string
	Index int
}

var (
	sentenceEnd = regexp.MustCompile(`[^.!?]+[.!?]+`)
	blankLine   = regexp.MustCompile(`\n[ \t]*\n`)
)

// chunkText splits normalized text into chunks of roughly TargetChars
// characters, flushing on paragraph boundaries and seeding each new chunk
// with the last Overlap characters of the previous one. Paragraphs longer
// than MaxChars are split at sentence granularity. A short trailing buffer
// is merged into the previous chunk rather than dropped; the merge is
// re-split when it would push the chunk past MaxChars.
func chunkText(text string, cfg ChunkConfig) []Chunk {
	if cfg.TargetChars <= 0 || cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}

	paras := splitParagraphs(text)
	if len(paras) == 0 {
		return nil
	}

	normalized := strings.Join(paras, "\n\n")
	if runeLen(normalized) <= cfg.MaxChars {
		return []Chunk{{Text: normalized, Index: 0}}
	}

	var pieces []string
	buf := ""
	for _, para := range paras {
		if runeLen(para) > cfg.MaxChars {
			// Oversized paragraph: flush whatever is pending, then degrade
			// to sentence granularity. The last sentence piece becomes the
			// new buffer so following paragraphs can attach to it.
			if buf != "" {
				pieces = append(pieces, buf)
				buf = ""
			}
			sub := splitBySentence(para, cfg)
			if len(sub) > 0 {
				pieces = append(pieces, sub[:len(sub)-1]...)
				buf = sub[len(sub)-1]
			}
			continue
		}

		if buf == "" {
			buf = para
			continue
		}

		if runeLen(buf)+2+runeLen(para) > cfg.TargetChars && runeLen(buf) >= cfg.MinChars {
			pieces = append(pieces, buf)
			buf = joinParagraph(tailRunes(buf, cfg.Overlap), para)
		} else {
			buf = joinParagraph(buf, para)
		}
	}

	pieces = appendTail(pieces, buf, cfg)

	chunks := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, Chunk{Text: p, Index: i})
	}
	return chunks
}

// appendTail emits a final buffer: as its own chunk when large enough (or
// when it is the only content), otherwise merged into the previous chunk.
// Keeping every character beats the MaxChars bound here, so an over-long
// merge is re-split at sentence granularity instead of being truncated.
func appendTail(pieces []string, buf string, cfg ChunkConfig) []string {
	if buf == "" {
		return pieces
	}
	if runeLen(buf) >= cfg.MinChars || len(pieces) == 0 {
		return append(pieces, buf)
	}

	merged := joinParagraph(pieces[len(pieces)-1], buf)
	if runeLen(merged) <= cfg.MaxChars {
		pieces[len(pieces)-1] = merged
		return pieces
	}
	return append(pieces[:len(pieces)-1], splitBySentence(merged, cfg)...)
}

// splitBySentence applies the target/overlap accumulation at sentence
// granularity. Sentences longer than MaxChars are cut at whitespace.
func splitBySentence(text string, cfg ChunkConfig) []string {
	var sentences []string
	for _, s := range splitSentences(text) {
		if runeLen(s) > cfg.MaxChars {
			sentences = append(sentences, splitLongRun(s, cfg)...)
		} else {
			sentences = append(sentences, s)
		}
	}

	var pieces []string
	buf := ""
	for _, s := range sentences {
		if buf == "" {
			buf = s
			continue
		}
		if runeLen(buf)+1+runeLen(s) > cfg.TargetChars && runeLen(buf) >= cfg.MinChars {
			pieces = append(pieces, buf)
			buf = strings.TrimSpace(tailRunes(buf, cfg.Overlap) + " " + s)
		} else {
			buf = buf + " " + s
		}
	}
	if buf != "" {
		pieces = append(pieces, buf)
	}
	return pieces
}

// splitSentences splits on sentence-ending punctuation, keeping a trailing
// fragment without terminal punctuation.
func splitSentences(text string) []string {
	matches := sentenceEnd.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var out []string
	last := 0
	for _, m := range matches {
		if s := strings.TrimSpace(text[last:m[1]]); s != "" {
			out = append(out, s)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// splitLongRun cuts a single run of text that has no usable sentence
// boundaries, preferring whitespace near the MaxChars mark.
func splitLongRun(text string, cfg ChunkConfig) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + cfg.MinChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			out = append(out, piece)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}
	return out
}

// splitParagraphs splits on blank lines and collapses whitespace runs
// inside each paragraph.
func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range blankLine.Split(text, -1) {
		para := strings.Join(strings.Fields(block), " ")
		if para != "" {
			paras = append(paras, para)
		}
	}
	return paras
}

func joinParagraph(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "\n\n" + b
}

func runeLen(s string) int {
	return len([]rune(s))
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
