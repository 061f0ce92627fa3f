package codec

import (
	"database/sql"
	"fmt"

	"github.com/nerrad567/http2sql/internal/infrastructure/logging"
)

// RowScanner shapes SQL result sets into rows.
type RowScanner struct {
	logger *logging.Logger
}

// NewRowScanner creates a scanner that reports undecodable values to logger.
// A nil logger discards them.
func NewRowScanner(logger *logging.Logger) *RowScanner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RowScanner{logger: logger}
}

// ScanRows reads every remaining row of rows and decodes each value by its
// column type. Values that fail to decode become null.
//
// The caller still owns rows and must close it.
func (s *RowScanner) ScanRows(rows *sql.Rows) ([]*Row, error) {
	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column types: %w", err)
	}

	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	out := make([]*Row, 0)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := NewRow(len(columns))
		for i, col := range columns {
			v, err := Decode(col.DatabaseTypeName(), raw[i])
			if err != nil {
				s.logger.Debug("column value decoded as null",
					"column", col.Name(),
					"type", col.DatabaseTypeName(),
					"error", err,
				)
				v = nil
			}
			row.Set(col.Name(), v)
			raw[i] = nil
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
