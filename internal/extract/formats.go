package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const docxBody = "word/document.xml"

// expected MIME types per extension; a match anywhere in the detected type's
// parent chain is accepted
var expectedMIME = map[string][]string{
	".pdf":  {"application/pdf"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".txt":  {"text/plain"},
	".md":   {"text/plain"},
}

func checkContentType(ext string, data []byte) error {
	want, ok := expectedMIME[ext]
	if !ok {
		return nil
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, w := range want {
			if m.Is(w) {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: content looks like %s, not %s", ErrUnsupportedType, detected.String(), ext)
}

func pdfText(data []byte) (text string, err error) {
	// the pdf parser panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// docxText walks word/document.xml collecting w:t runs, with paragraph,
// break and tab elements turned into whitespace
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("docx has no " + docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		sb     strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
