package extract

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// pdfText concatenates the text of every non-empty page, separated by blank lines.
func pdfText(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Source: name, Message: "document is empty"}
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", &ExtractionError{Source: name, Message: "failed to open PDF", Cause: err}
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return "", &ExtractionError{Source: name, Message: fmt.Sprintf("failed to read page %d", n+1), Cause: err}
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", &ExtractionError{Source: name, Message: "no extractable text in PDF"}
	}
	return strings.Join(pages, "\n\n"), nil
}
