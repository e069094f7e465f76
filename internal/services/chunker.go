package services

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText packs paragraphs into chunks of at most maxChunkSize runes.
// Paragraphs longer than a chunk are split into sentences. A new chunk starts
// with the last overlap runes of the previous one when they still fit.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	b := &chunkBuilder{max: maxChunkSize, overlap: overlap}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			b.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			b.add(sentence, " ")
		}
	}

	return b.finish()
}

type chunkBuilder struct {
	max     int
	overlap int
	current strings.Builder
	chunks  []string
}

func (b *chunkBuilder) add(piece, sep string) {
	size := utf8.RuneCountInString(b.current.String())
	if size > 0 && size+utf8.RuneCountInString(sep)+utf8.RuneCountInString(piece) > b.max {
		prev := b.current.String()
		b.chunks = append(b.chunks, prev)
		b.current.Reset()

		tail := getLastNChars(prev, b.overlap)
		if tail != "" && utf8.RuneCountInString(tail)+utf8.RuneCountInString(sep)+utf8.RuneCountInString(piece) <= b.max {
			b.current.WriteString(tail)
		}
	}

	if b.current.Len() > 0 {
		b.current.WriteString(sep)
	}
	b.current.WriteString(piece)
}

func (b *chunkBuilder) finish() []string {
	if b.current.Len() > 0 {
		b.chunks = append(b.chunks, b.current.String())
	}
	return b.chunks
}

// splitIntoSentences splits on terminal punctuation and keeps it attached.
func splitIntoSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func getLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
