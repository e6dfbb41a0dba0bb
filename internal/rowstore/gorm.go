package rowstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sheetRow persists one table row: the sheet name, its position, and the
// cells as a JSON-encoded string array. Row 0 is the header.
type sheetRow struct {
	ID        uint   `gorm:"primaryKey"`
	Sheet     string `gorm:"type:varchar(64);uniqueIndex:idx_sheet_row;not null"`
	RowIndex  int    `gorm:"uniqueIndex:idx_sheet_row;not null"`
	Cells     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sheetRow) TableName() string { return "sheet_rows" }

// GormStore is the postgres-backed row store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&sheetRow{}); err != nil {
		return nil, fmt.Errorf("migrate sheet_rows: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Table(name string) (Table, error) {
	var count int64
	if err := s.db.Model(&sheetRow{}).Where("sheet = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return &gormTable{db: s.db, name: name}, nil
}

func (s *GormStore) FindOrCreate(name string, header Row) (Table, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&sheetRow{}).Where("sheet = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		cells, err := json.Marshal([]string(header))
		if err != nil {
			return err
		}
		return tx.Create(&sheetRow{Sheet: name, RowIndex: 0, Cells: string(cells)}).Error
	})
	if err != nil {
		return nil, err
	}
	return &gormTable{db: s.db, name: name}, nil
}

type gormTable struct {
	db   *gorm.DB
	name string
}

func (t *gormTable) Name() string { return t.name }

func (t *gormTable) Rows() ([]Row, error) {
	var records []sheetRow
	err := t.db.Where("sheet = ?", t.name).Order("row_index ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		var cells []string
		if err := json.Unmarshal([]byte(rec.Cells), &cells); err != nil {
			return nil, fmt.Errorf("decode row %d of %s: %w", rec.RowIndex, t.name, err)
		}
		rows = append(rows, Row(cells))
	}
	return rows, nil
}

func (t *gormTable) Append(row Row) error {
	cells, err := json.Marshal([]string(row))
	if err != nil {
		return err
	}
	// The unique (sheet, row_index) index turns a lost race between two
	// appenders into a constraint error instead of a silent overwrite.
	return t.db.Transaction(func(tx *gorm.DB) error {
		var maxIdx int64 = -1
		err := tx.Model(&sheetRow{}).
			Where("sheet = ?", t.name).
			Select("COALESCE(MAX(row_index), -1)").
			Scan(&maxIdx).Error
		if err != nil {
			return err
		}
		return tx.Create(&sheetRow{
			Sheet:    t.name,
			RowIndex: int(maxIdx) + 1,
			Cells:    string(cells),
		}).Error
	})
}

func (t *gormTable) WriteCell(rowIdx, colIdx int, value string) error {
	return t.WriteCells(rowIdx, map[int]string{colIdx: value})
}

// WriteCells rewrites the stored row in one transaction, so the multi-cell
// update of a merge lands atomically on this backend.
func (t *gormTable) WriteCells(rowIdx int, cells map[int]string) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		var rec sheetRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sheet = ? AND row_index = ?", t.name, rowIdx).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("row index %d out of range for table %s", rowIdx, t.name)
		}
		if err != nil {
			return err
		}
		var decoded []string
		if err := json.Unmarshal([]byte(rec.Cells), &decoded); err != nil {
			return fmt.Errorf("decode row %d of %s: %w", rowIdx, t.name, err)
		}
		for colIdx, value := range cells {
			if colIdx < 0 {
				return fmt.Errorf("column index %d out of range for table %s", colIdx, t.name)
			}
			for colIdx >= len(decoded) {
				decoded = append(decoded, "")
			}
			decoded[colIdx] = value
		}
		encoded, err := json.Marshal(decoded)
		if err != nil {
			return err
		}
		return tx.Model(&sheetRow{}).
			Where("id = ?", rec.ID).
			Update("cells", string(encoded)).Error
	})
}
