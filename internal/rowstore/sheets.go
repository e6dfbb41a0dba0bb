package rowstore

import (
	"context"
	"fmt"
	"sort"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// SheetsStore talks to a Google Sheets document, the original backing store
// of this API. Tables are sheet tabs addressed by title.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsStore builds a store for one spreadsheet. credentialsFile may be
// empty, in which case application default credentials are used.
func NewSheetsStore(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets store: spreadsheet id is required")
	}
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets store: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// sheetID returns the numeric id of the tab with the given title, or -1.
func (s *SheetsStore) sheetID(name string) (int64, error) {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Do()
	if err != nil {
		return -1, err
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return sh.Properties.SheetId, nil
		}
	}
	return -1, nil
}

func (s *SheetsStore) Table(name string) (Table, error) {
	id, err := s.sheetID(name)
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return &sheetsTable{store: s, name: name}, nil
}

func (s *SheetsStore) FindOrCreate(name string, header Row) (Table, error) {
	id, err := s.sheetID(name)
	if err != nil {
		return nil, err
	}
	if id < 0 {
		if err := s.createSheet(name, header); err != nil {
			return nil, err
		}
	}
	return &sheetsTable{store: s, name: name}, nil
}

// createSheet adds the tab with a frozen first row, writes the header, and
// bolds it, matching how the original document was laid out.
func (s *SheetsStore) createSheet(name string, header Row) error {
	addResp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title:          name,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
			},
		}},
	}).Do()
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	sheetID := addResp.Replies[0].AddSheet.Properties.SheetId

	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(header)}}
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, rangeForRow(name, 0, 0, len(header)), vr).
		ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
				},
				Fields: "userEnteredFormat.textFormat.bold",
			},
		}},
	}).Do()
	if err != nil {
		return fmt.Errorf("format header of %s: %w", name, err)
	}
	return nil
}

type sheetsTable struct {
	store *SheetsStore
	name  string
}

func (t *sheetsTable) Name() string { return t.name }

func (t *sheetsTable) Rows() ([]Row, error) {
	resp, err := t.store.svc.Spreadsheets.Values.
		Get(t.store.spreadsheetID, "'"+t.name+"'").Do()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make(Row, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *sheetsTable) Append(row Row) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(row)}}
	_, err := t.store.svc.Spreadsheets.Values.
		Append(t.store.spreadsheetID, "'"+t.name+"'!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").Do()
	return err
}

func (t *sheetsTable) WriteCell(rowIdx, colIdx int, value string) error {
	return t.WriteCells(rowIdx, map[int]string{colIdx: value})
}

// WriteCells issues one values.Update per contiguous column span. Spans are
// not atomic with each other; a failure between spans leaves the row
// partially updated.
func (t *sheetsTable) WriteCells(rowIdx int, cells map[int]string) error {
	cols := make([]int, 0, len(cells))
	for c := range cells {
		if c < 0 {
			return fmt.Errorf("column index %d out of range for table %s", c, t.name)
		}
		cols = append(cols, c)
	}
	sort.Ints(cols)

	for i := 0; i < len(cols); {
		j := i
		for j+1 < len(cols) && cols[j+1] == cols[j]+1 {
			j++
		}
		span := make([]interface{}, 0, j-i+1)
		for _, c := range cols[i : j+1] {
			span = append(span, cells[c])
		}
		vr := &sheets.ValueRange{Values: [][]interface{}{span}}
		_, err := t.store.svc.Spreadsheets.Values.
			Update(t.store.spreadsheetID, rangeForRow(t.name, rowIdx, cols[i], len(span)), vr).
			ValueInputOption("RAW").Do()
		if err != nil {
			return err
		}
		i = j + 1
	}
	return nil
}

func toInterfaces(row Row) []interface{} {
	out := make([]interface{}, len(row))
	for i, cell := range row {
		out[i] = cell
	}
	return out
}

// rangeForRow builds an A1 range covering width cells of one row.
func rangeForRow(sheet string, rowIdx, colIdx, width int) string {
	start := colLetter(colIdx) + fmt.Sprint(rowIdx+1)
	end := colLetter(colIdx+width-1) + fmt.Sprint(rowIdx+1)
	return fmt.Sprintf("'%s'!%s:%s", sheet, start, end)
}

func colLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}
