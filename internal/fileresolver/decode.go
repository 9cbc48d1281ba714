package fileresolver

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html/charset"

	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/internal/repository"
)

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}

	errBinary   = errors.New("binary payload")
	errNoRows   = errors.New("no rows")
	errNoSheets = errors.New("workbook has no sheets")
)

func isBinary(body []byte) bool {
	return bytes.HasPrefix(body, pdfMagic) ||
		bytes.HasPrefix(body, zipMagic) ||
		bytes.HasPrefix(body, oleMagic) ||
		bytes.IndexByte(body, 0) >= 0
}

func decodeCSV(dl *repository.Download) (*entity.ResolvedFile, error) {
	if isBinary(dl.Body) {
		return nil, errBinary
	}

	body := dl.Body
	if !utf8.Valid(body) {
		enc, name, _ := charset.DetermineEncoding(body, dl.ContentType)
		decoded, err := enc.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		body = decoded
	}
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(body))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoRows
	}
	return &entity.ResolvedFile{Table: &entity.Table{Rows: records}}, nil
}

func decodeSpreadsheet(dl *repository.Download) (*entity.ResolvedFile, error) {
	book, err := excelize.OpenReader(bytes.NewReader(dl.Body))
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}
	// Raw values: formatted text such as "1,234" would not parse as a number.
	rows, err := book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errNoRows
	}
	return &entity.ResolvedFile{Table: &entity.Table{Rows: rows}}, nil
}

func decodePDF(dl *repository.Download) (*entity.ResolvedFile, error) {
	reader, err := pdf.NewReader(bytes.NewReader(dl.Body), int64(len(dl.Body)))
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return &entity.ResolvedFile{Text: strings.Join(pages, "\n")}, nil
}
