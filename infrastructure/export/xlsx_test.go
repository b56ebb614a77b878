package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reviewfunnel/funnel/domain/service"
)

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	table := service.Table{
		Sheet:  "Leads",
		Header: []string{"ID", "Email", "Status"},
		Rows: [][]any{
			{int64(1), "a@example.com", "new"},
			{int64(2), "b@example.com", "converted"},
		},
	}

	require.NoError(t, NewXLSXWriter().Write(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Leads"}, f.GetSheetList())
	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Email", "Status"}, rows[0])
	assert.Equal(t, []string{"2", "b@example.com", "converted"}, rows[2])
}

func TestXLSXWriter_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewXLSXWriter().Write(&buf, service.Table{Header: []string{"ID"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ID"}}, rows)
}

func TestXLSXWriter_ContentType(t *testing.T) {
	assert.Equal(t, ContentTypeXLSX, NewXLSXWriter().ContentType())
}
