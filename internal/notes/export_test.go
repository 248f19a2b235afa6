package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportXLSX(t *testing.T) {
	note := DeliveryNote{
		NoteNumber:  12,
		WorkerID:    3,
		ClientName:  "Logística Pérez",
		Destination: "Calle Mayor 1, Madrid",
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:      StatusSigned,
		IsInvoiced:  true,
	}
	rows := []NoteResponse{NewNoteResponse(&note)}

	book, err := ExportXLSX(rows)
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue(exportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Number", header)

	number, err := book.GetCellValue(exportSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "12", number)

	client, err := book.GetCellValue(exportSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Logística Pérez", client)

	invoiced, err := book.GetCellValue(exportSheet, "N2")
	require.NoError(t, err)
	assert.Equal(t, "yes", invoiced)
}
