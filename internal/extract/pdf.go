package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

func extractPDF(data []byte) ([]PageText, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}

	total := r.NumPage()
	pages := make([]PageText, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, PageText{Page: i, Text: ""})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single broken page should not sink the document.
			text = ""
		}
		pages = append(pages, PageText{Page: i, Text: normalize(text)})
	}

	if len(pages) == 0 {
		pages = append(pages, PageText{Page: 1, Text: ""})
	}
	return pages, nil
}
