package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slideNumber = regexp.MustCompile(`slide(\d+)\.xml$`)

// detectOpenXMLKind peeks at the zip entries to tell docx from pptx.
func detectOpenXMLKind(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch {
		case f.Name == "word/document.xml":
			return "docx"
		case strings.HasPrefix(f.Name, "ppt/slides/"):
			return "pptx"
		}
	}
	return ""
}

// extractDOCX reads word/document.xml and emits one pseudo-page per
// non-empty paragraph group. DOCX has no real page boundaries, so
// paragraphs are the closest stable unit.
func extractDOCX(data []byte) ([]PageText, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx zip: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("docx: word/document.xml missing")
	}

	raw, err := readZipFile(doc)
	if err != nil {
		return nil, err
	}

	paragraphs := collectParagraphs(raw, "p", "t")
	pages := make([]PageText, 0, len(paragraphs))
	for _, para := range paragraphs {
		if text := normalize(para); text != "" {
			pages = append(pages, PageText{Page: len(pages) + 1, Text: text})
		}
	}
	if len(pages) == 0 {
		pages = append(pages, PageText{Page: 1, Text: ""})
	}
	return pages, nil
}

// extractPPTX emits one page per slide, ordered by slide number.
func extractPPTX(data []byte) ([]PageText, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pptx zip: %w", err)
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		m := slideNumber.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	pages := make([]PageText, 0, len(slides))
	for i, s := range slides {
		raw, err := readZipFile(s.file)
		if err != nil {
			return nil, err
		}
		texts := collectParagraphs(raw, "", "t")
		pages = append(pages, PageText{Page: i + 1, Text: normalize(strings.Join(texts, " "))})
	}
	if len(pages) == 0 {
		pages = append(pages, PageText{Page: 1, Text: ""})
	}
	return pages, nil
}

func extractPlain(data []byte) []PageText {
	return []PageText{{Page: 1, Text: normalize(string(data))}}
}

// collectParagraphs walks OpenXML and gathers the character data of every
// <ns:textTag> run. When paraTag is non-empty the runs are grouped by their
// enclosing <ns:paraTag> element; otherwise everything lands in one group.
func collectParagraphs(raw []byte, paraTag, textTag string) []string {
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var groups []string
	var current strings.Builder
	inText := false

	flush := func() {
		groups = append(groups, current.String())
		current.Reset()
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textTag {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textTag:
				inText = false
				current.WriteString(" ")
			case paraTag:
				if paraTag != "" {
					flush()
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if current.Len() > 0 || paraTag == "" {
		flush()
	}
	return groups
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
