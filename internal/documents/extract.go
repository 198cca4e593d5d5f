// Package documents turns uploaded CV files into plain text.
package documents

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

// Kind is a supported upload format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// RejectedError reports an upload that cannot be turned into text.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// TooLargeError reports an upload over MaxSize.
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file is %d bytes; the limit is %d MB", e.Size, e.Limit>>20)
}

// Detect checks the file name and leading bytes and returns the document kind.
func Detect(filename string, data []byte) (Kind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		if !bytes.HasPrefix(data, pdfMagic) {
			return "", &RejectedError{Reason: "invalid PDF file"}
		}
		return KindPDF, nil
	case ".docx":
		if !bytes.HasPrefix(data, zipMagic) {
			return "", &RejectedError{Reason: "invalid DOCX file"}
		}
		return KindDOCX, nil
	default:
		return "", &RejectedError{Reason: "only .pdf and .docx files are accepted"}
	}
}

// Extract returns the cleaned text of an uploaded document.
func Extract(filename string, data []byte) (string, error) {
	if int64(len(data)) > MaxSize {
		return "", &TooLargeError{Size: int64(len(data)), Limit: MaxSize}
	}
	if len(data) == 0 {
		return "", &RejectedError{Reason: "file is empty"}
	}

	kind, err := Detect(filename, data)
	if err != nil {
		return "", err
	}

	var raw string
	switch kind {
	case KindPDF:
		raw, err = ExtractPDF(data)
	case KindDOCX:
		raw, err = ExtractDOCX(data)
	}
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	if text == "" {
		return "", &RejectedError{Reason: "no text could be extracted from the file"}
	}
	return text, nil
}

// ExtractPDF reads the plain text of every page.
func ExtractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &RejectedError{Reason: "PDF file could not be read"}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &RejectedError{Reason: fmt.Sprintf("PDF file could not be read: %v", err)}
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &RejectedError{Reason: fmt.Sprintf("failed to read PDF page %d: %v", i, err)}
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:cr[^>]*/>`)
	tabTag       = regexp.MustCompile(`<w:tab[^>]*/>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
)

// ExtractDOCX reads the body text of a Word document, one paragraph per line.
func ExtractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &RejectedError{Reason: fmt.Sprintf("DOCX file could not be read: %v", err)}
	}
	defer doc.Close()

	return xmlToText(doc.Editable().GetContent()), nil
}

func xmlToText(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = tabTag.ReplaceAllString(content, " ")
	content = anyTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}
