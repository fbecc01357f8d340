package extraction

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Prompt size limits for PDF text. Text beyond ChunkSize*MaxChunks is cut
// and the tail chunk is annotated.
const (
	ChunkSize = 8000
	MaxChunks = 6
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// ExtractPDFText extracts plain text from raw PDF bytes, page by page.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the document.
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(text)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return b.String(), nil
}

// NormalizeText collapses noisy whitespace so PDF text packs more content
// into a bounded prompt. Conservative: keeps line breaks, collapses runs
// of blank lines into a single blank line.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ChunkText splits normalized text into at most maxChunks chunks of at
// most chunkSize characters. When input exceeds the budget, the final
// chunk is annotated so the model knows content was cut.
func ChunkText(s string, chunkSize, maxChunks int) []string {
	if s == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	if maxChunks <= 0 {
		maxChunks = MaxChunks
	}

	var chunks []string
	remaining := s
	for len(remaining) > 0 && len(chunks) < maxChunks {
		if len(remaining) <= chunkSize {
			chunks = append(chunks, remaining)
			remaining = ""
			break
		}
		chunks = append(chunks, remaining[:chunkSize])
		remaining = remaining[chunkSize:]
	}

	if len(remaining) > 0 {
		chunks[len(chunks)-1] += "\n[document truncated: remaining content omitted]"
	}
	return chunks
}
