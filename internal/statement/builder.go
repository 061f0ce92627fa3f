package statement

import (
	"fmt"
	"strings"

	"github.com/nerrad567/http2sql/internal/codec"
)

// Column describes one column of a table to create.
type Column struct {
	Name        string   `json:"name"`
	DataType    string   `json:"data_type"`
	Constraints []string `json:"constraints,omitempty"`
}

// TableSpec describes a table to create.
type TableSpec struct {
	Name    string   `json:"table_name"`
	Columns []Column `json:"columns"`
}

// Statement is SQL text plus its positional bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// CreateTable builds a CREATE TABLE statement.
//
// Columns keep their order. Constraints are appended after the data type,
// separated by spaces.
func CreateTable(spec TableSpec) (string, error) {
	if spec.Name == "" {
		return "", fmt.Errorf("%w: Table name cannot be empty", ErrInvalidInput)
	}
	if len(spec.Columns) == 0 {
		return "", fmt.Errorf("%w: At least one column is required", ErrInvalidInput)
	}
	if err := ValidateIdentifier("table", spec.Name); err != nil {
		return "", err
	}

	defs := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		if err := ValidateIdentifier("column", col.Name); err != nil {
			return "", err
		}
		dataType := strings.TrimSpace(col.DataType)
		if dataType == "" {
			return "", fmt.Errorf("%w: column %q has no data type", ErrInvalidInput, col.Name)
		}

		parts := make([]string, 0, 2+len(col.Constraints))
		parts = append(parts, col.Name, dataType)
		for _, c := range col.Constraints {
			if c = strings.TrimSpace(c); c != "" {
				parts = append(parts, c)
			}
		}
		defs = append(defs, strings.Join(parts, " "))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", spec.Name, strings.Join(defs, ", ")), nil
}

// DropTable builds a DROP TABLE statement.
func DropTable(name string) (string, error) {
	if err := ValidateIdentifier("table", name); err != nil {
		return "", err
	}
	return "DROP TABLE " + name, nil
}

// BulkInsert builds a single multi-row INSERT statement.
//
// The column list is the key order of the first row. Every row is bound
// against that list: missing keys bind NULL and keys absent from the first
// row are ignored.
func BulkInsert(table string, rows []codec.Row) (Statement, error) {
	if err := ValidateIdentifier("table", table); err != nil {
		return Statement{}, err
	}
	if len(rows) == 0 {
		return Statement{}, fmt.Errorf("%w: At least one row is required", ErrInvalidInput)
	}
	columns := rows[0].Keys()
	if len(columns) == 0 {
		return Statement{}, fmt.Errorf("%w: Row data cannot be empty", ErrInvalidInput)
	}
	for _, col := range columns {
		if err := ValidateIdentifier("column", col); err != nil {
			return Statement{}, err
		}
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i := range rows {
		tuples[i] = placeholders
		for _, col := range columns {
			v, _ := rows[i].Get(col)
			args = append(args, codec.EncodeForBind(v))
		}
	}

	return Statement{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			table,
			strings.Join(columns, ", "),
			strings.Join(tuples, ", "),
		),
		Args: args,
	}, nil
}
