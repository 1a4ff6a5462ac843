package spending

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/xuri/excelize/v2"
)

// Format is a claimed-gift export format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ContentType returns the MIME type for f
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ParseFormat validates f. An empty value selects xlsx.
func ParseFormat(f string) (Format, error) {
	switch Format(f) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q", f)
}

var exportHeader = []string{"Gift", "For", "Price", "Status", "Updated", "Link"}

func exportRow(c models.ClaimedGift) []string {
	owner := ""
	if c.Gift.User != nil {
		owner = c.Gift.User.DisplayName
	}
	return []string{
		c.Gift.Name,
		owner,
		strconv.FormatFloat(c.Gift.Price, 'f', 2, 64),
		c.StatusID.String(),
		c.ModifiedAt.UTC().Format(time.RFC3339),
		c.Gift.WebLink,
	}
}

// Export writes claimed as a spreadsheet in format f. Every claim must have
// its Gift loaded.
func Export(w io.Writer, f Format, claimed []models.ClaimedGift) error {
	if f == FormatCSV {
		cw := csv.NewWriter(w)
		if err := cw.Write(exportHeader); err != nil {
			return err
		}
		for _, c := range claimed {
			if err := cw.Write(exportRow(c)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	book := excelize.NewFile()
	defer book.Close()

	const sheet = "Sheet1"
	if err := book.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, c := range claimed {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.Gift.Name, "", c.Gift.Price, c.StatusID.String(), c.ModifiedAt.UTC(), c.Gift.WebLink}
		if c.Gift.User != nil {
			row[1] = c.Gift.User.DisplayName
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := book.WriteTo(w)
	return err
}
