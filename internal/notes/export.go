package notes

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Delivery Notes"

var exportHeaders = []string{
	"Number", "Date", "Client", "Destination", "Vehicle", "Worker ID",
	"Status", "Wait (min)", "Stops", "Distance (km)",
	"Origin Signed", "Destination Signed", "Fully Signed", "Invoiced",
}

// ExportXLSX builds a spreadsheet of the given notes, one row per note.
// The caller owns the returned file and must Close it.
func ExportXLSX(notes []NoteResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", exportSheet)

	for col, title := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, err
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, style)
	}

	for i, n := range notes {
		vehicle := ""
		if n.VehicleType != nil {
			vehicle = *n.VehicleType
		}
		wait := 0
		if n.WaitTime != nil {
			wait = *n.WaitTime
		}
		row := []any{
			n.NoteNumber,
			n.Date.Format("2006-01-02"),
			n.ClientName,
			n.Destination,
			vehicle,
			n.WorkerID,
			n.Status,
			wait,
			len(n.PickupOrigins),
			fmt.Sprintf("%.1f", n.RouteDistanceMeters/1000),
			yesNo(n.Completion.OriginSigned),
			yesNo(n.Completion.DestinationSigned),
			yesNo(n.Completion.FullySigned),
			yesNo(n.IsInvoiced),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
