package fileresolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/internal/repository"
)

type fakeDownloader struct {
	files map[string]*repository.Download
	calls []string
}

func (f *fakeDownloader) Download(_ context.Context, url string) (*repository.Download, error) {
	f.calls = append(f.calls, url)
	dl, ok := f.files[url]
	if !ok {
		return nil, errors.New("404 not found")
	}
	dl.URL = url
	return dl, nil
}

func newResolver(t *testing.T, files map[string]*repository.Download) (*Resolver, *fakeDownloader) {
	dl := &fakeDownloader{files: files}
	return NewResolver(dl, zaptest.NewLogger(t)), dl
}

func TestResolveCSV(t *testing.T) {
	r, dl := newResolver(t, map[string]*repository.Download{
		"https://x/data.csv": {Body: []byte("value,label\n10,a\n20,b\n30,c\n")},
	})

	file, err := r.Resolve(context.Background(), []string{"https://x/data.csv", "https://x/other"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://x/data.csv"}, dl.calls)
	assert.Equal(t, entity.FormatCSV, file.Format)
	require.NotNil(t, file.Table)
	col, ok := file.Table.Normalize().FirstNumericColumn()
	require.True(t, ok)
	assert.InDelta(t, 60, col.Sum(), 1e-9)
}

func TestResolveCSVTranscodesLegacyCharset(t *testing.T) {
	r, _ := newResolver(t, map[string]*repository.Download{
		"https://x/latin1.csv": {
			ContentType: "text/csv; charset=iso-8859-1",
			Body:        []byte("name,value\ncaf\xe9,10\n"),
		},
	})

	file, err := r.Resolve(context.Background(), []string{"https://x/latin1.csv"})
	require.NoError(t, err)
	assert.Equal(t, "café", file.Table.Rows[1][0])
}

func TestResolveSpreadsheet(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]any{"label", "value"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]any{"a", 1.5}))
	require.NoError(t, book.SetSheetRow(sheet, "A3", &[]any{"b", 2.5}))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	r, _ := newResolver(t, map[string]*repository.Download{
		"https://x/data.xlsx": {Body: buf.Bytes()},
	})

	file, err := r.Resolve(context.Background(), []string{"https://x/data.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, entity.FormatSpreadsheet, file.Format)
	col, ok := file.Table.Normalize().FirstNumericColumn()
	require.True(t, ok)
	assert.Equal(t, "value", col.Name)
	assert.InDelta(t, 4, col.Sum(), 1e-9)
}

func TestResolveSpreadsheetReadsRawValuesOfFormattedCells(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetCellValue(sheet, "A1", "value"))
	require.NoError(t, book.SetCellValue(sheet, "A2", 1234))
	require.NoError(t, book.SetCellValue(sheet, "A3", 5678))
	thousands, err := book.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	require.NoError(t, err)
	require.NoError(t, book.SetCellStyle(sheet, "A2", "A3", thousands))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	r, _ := newResolver(t, map[string]*repository.Download{
		"https://x/styled.xlsx": {Body: buf.Bytes()},
	})

	file, err := r.Resolve(context.Background(), []string{"https://x/styled.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"value"}, {"1234"}, {"5678"}}, file.Table.Rows)
	col, ok := file.Table.Normalize().FirstNumericColumn()
	require.True(t, ok)
	assert.InDelta(t, 6912, col.Sum(), 1e-9)
}

// buildPDF writes a minimal PDF with one line of Helvetica text per page.
func buildPDF(pages ...string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	var kids []string
	for _, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		contentRef := len(objects)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentRef))
		kids = append(kids, fmt.Sprintf("%d 0 R", len(objects)))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestResolvePDF(t *testing.T) {
	r, _ := newResolver(t, map[string]*repository.Download{
		"https://x/report.pdf": {
			ContentType: "application/pdf",
			Body:        buildPDF("Revenue 12", "Costs 30.5"),
		},
	})

	file, err := r.Resolve(context.Background(), []string{"https://x/report.pdf"})
	require.NoError(t, err)

	assert.Equal(t, entity.FormatPDF, file.Format)
	assert.Nil(t, file.Table)
	assert.Contains(t, file.Text, "Revenue 12")
	assert.Contains(t, file.Text, "Costs 30.5")
	assert.Equal(t, "https://x/report.pdf", file.SourceURL)
}

func TestResolveMissingLink(t *testing.T) {
	r, dl := newResolver(t, nil)

	_, err := r.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrMissingDownloadLink)
	assert.Empty(t, dl.calls)
}

func TestResolveUnprocessable(t *testing.T) {
	r, _ := newResolver(t, map[string]*repository.Download{
		"https://x/blob": {Body: []byte{0x00, 0x9f, 0x13, 0x37, 0x00}},
	})

	_, err := r.Resolve(context.Background(), []string{"https://x/blob"})
	assert.ErrorIs(t, err, entity.ErrUnprocessableFile)
}

func TestResolveDownloadError(t *testing.T) {
	r, _ := newResolver(t, nil)

	_, err := r.Resolve(context.Background(), []string{"https://x/missing"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrUnprocessableFile)
}

func TestDecodeCSVRejectsBinary(t *testing.T) {
	_, err := decodeCSV(&repository.Download{Body: []byte("%PDF-1.4\n...")})
	assert.ErrorIs(t, err, errBinary)

	_, err = decodeCSV(&repository.Download{Body: []byte("PK\x03\x04rest")})
	assert.ErrorIs(t, err, errBinary)
}
