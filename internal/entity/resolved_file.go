package entity

// FileFormat is the format a downloaded file was successfully decoded as.
type FileFormat string

const (
	FormatCSV         FileFormat = "csv"
	FormatSpreadsheet FileFormat = "spreadsheet"
	FormatPDF         FileFormat = "pdf"
	FormatUnknown     FileFormat = "unknown"
)

// ResolvedFile is a downloaded attachment decoded into tabular or textual form.
// It is consumed by the classifier right away and never stored.
type ResolvedFile struct {
	SourceURL string
	Content   []byte
	Format    FileFormat
	Table     *Table // set for csv and spreadsheet
	Text      string // set for pdf
}
