package codec

import "strings"

// SQLType is the family a column type name belongs to.
type SQLType int

// Supported type families.
const (
	Unsupported SQLType = iota
	SignedInt
	UnsignedInt
	Float
	Decimal
	Text
	Binary
	Bool
	Date
	Time
	DateTime
	JSON
	Enum
)

var typeNames = map[SQLType]string{
	Unsupported: "unsupported",
	SignedInt:   "signed_int",
	UnsignedInt: "unsigned_int",
	Float:       "float",
	Decimal:     "decimal",
	Text:        "text",
	Binary:      "binary",
	Bool:        "bool",
	Date:        "date",
	Time:        "time",
	DateTime:    "datetime",
	JSON:        "json",
	Enum:        "enum",
}

// String returns the family name.
func (t SQLType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unsupported"
}

var baseTypes = map[string]SQLType{
	"TINYINT":    SignedInt,
	"SMALLINT":   SignedInt,
	"MEDIUMINT":  SignedInt,
	"INT":        SignedInt,
	"INTEGER":    SignedInt,
	"BIGINT":     SignedInt,
	"FLOAT":      Float,
	"DOUBLE":     Float,
	"REAL":       Float,
	"DECIMAL":    Decimal,
	"NUMERIC":    Decimal,
	"CHAR":       Text,
	"VARCHAR":    Text,
	"TEXT":       Text,
	"TINYTEXT":   Text,
	"MEDIUMTEXT": Text,
	"LONGTEXT":   Text,
	"BINARY":     Binary,
	"VARBINARY":  Binary,
	"BLOB":       Binary,
	"TINYBLOB":   Binary,
	"MEDIUMBLOB": Binary,
	"LONGBLOB":   Binary,
	"BOOL":       Bool,
	"BOOLEAN":    Bool,
	"DATE":       Date,
	"TIME":       Time,
	"DATETIME":   DateTime,
	"TIMESTAMP":  DateTime,
	"JSON":       JSON,
	"ENUM":       Enum,
	"SET":        Enum,
}

// ParseType maps a column type name onto its family.
//
// The name is matched case-insensitively. Length and display parameters are
// ignored ("VARCHAR(255)", "DECIMAL(10,2)", "ENUM('a','b')"), and the
// UNSIGNED and ZEROFILL modifiers are accepted before or after the base name
// ("INT UNSIGNED" as declared, "UNSIGNED INT" as reported by the MySQL driver).
func ParseType(name string) SQLType {
	var (
		base     string
		unsigned bool
	)
	for _, word := range strings.Fields(strings.ToUpper(stripParams(name))) {
		switch word {
		case "UNSIGNED":
			unsigned = true
		case "ZEROFILL":
			// ZEROFILL implies UNSIGNED in MySQL.
			unsigned = true
		case "SIGNED":
		default:
			if base == "" {
				base = word
			}
		}
	}

	t, ok := baseTypes[base]
	if !ok {
		return Unsupported
	}
	if t == SignedInt && unsigned {
		return UnsignedInt
	}
	return t
}

// stripParams removes every parenthesised group, including quoted content.
func stripParams(name string) string {
	var (
		b     strings.Builder
		depth int
		quote byte
	)
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case depth > 0 && (c == '\'' || c == '"'):
			quote = c
		case c == '(':
			if depth == 0 {
				b.WriteByte(' ')
			}
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}
