package artifacts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// renderDocx encodes text as a word-processing document with one paragraph
// per line, so joining the paragraphs with "\n" yields text. Tabs become
// tab elements.
func renderDocx(text string) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()
	for line := range strings.SplitSeq(text, "\n") {
		p := doc.AddParagraph()
		if line == "" {
			continue
		}
		preserveSpace(p.AddText(line))
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode docx: %w", err)
	}
	return buf.Bytes(), nil
}

// preserveSpace marks text elements whose whitespace a reader would
// otherwise collapse or trim.
func preserveSpace(run *docx.Run) {
	for _, child := range run.Children {
		t, ok := child.(*docx.Text)
		if !ok {
			continue
		}
		if t.Text != strings.TrimSpace(t.Text) || strings.Contains(t.Text, "  ") {
			t.XMLSpace = "preserve"
		}
	}
}
