package service

import "io"

// Table is a titled grid of values ready to be written as a spreadsheet.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

// TableWriter encodes tables into a document format.
type TableWriter interface {
	Write(w io.Writer, t Table) error
	// ContentType returns the MIME type of the written document.
	ContentType() string
}
