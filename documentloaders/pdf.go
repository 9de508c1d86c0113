package documentloaders

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var errNoPDFText = errors.New("no text extracted from PDF")

// readPDF returns the plain text of every page that has any, joined by a
// blank line so pages start new paragraphs.
func readPDF(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", 0, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(normalizeNewlines(text)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", numPages, errNoPDFText
	}
	return strings.Join(pages, "\n\n"), numPages, nil
}
