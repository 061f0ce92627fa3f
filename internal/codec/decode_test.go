package codec

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	ts := time.Date(2025, 1, 14, 9, 30, 5, 0, time.UTC)

	tests := []struct {
		name     string
		typeName string
		raw      any
		want     any
	}{
		{"null", "INT", nil, nil},
		{"signed from int64", "INT", int64(-7), int64(-7)},
		{"signed from text", "BIGINT", []byte("-9223372036854775808"), int64(-9223372036854775808)},
		{"unsigned max", "BIGINT UNSIGNED", []byte("18446744073709551615"), uint64(18446744073709551615)},
		{"unsigned from int64", "INT UNSIGNED", int64(42), uint64(42)},
		{"float", "DOUBLE", float64(1.5), float64(1.5)},
		{"float from text", "FLOAT", []byte("2.25"), float64(2.25)},
		{"decimal exact literal", "DECIMAL(20,10)", []byte("12345678901.1234567890"), "12345678901.1234567890"},
		{"decimal from float", "DECIMAL(10,2)", float64(19.99), "19.99"},
		{"text", "VARCHAR(32)", []byte("hello"), "hello"},
		{"text from string", "TEXT", "hello", "hello"},
		{"binary", "BLOB", []byte{0x00, 0xff, 0x10}, "AP8Q"},
		{"bool", "BOOLEAN", true, true},
		{"bool from int", "BOOL", int64(0), false},
		{"date from time", "DATE", ts, "2025-01-14"},
		{"date from text", "DATE", []byte("2025-01-14"), "2025-01-14"},
		{"time", "TIME", []byte("09:30:05"), "09:30:05"},
		{"time with fraction", "TIME(3)", []byte("09:30:05.250"), "09:30:05"},
		{"time over a day", "TIME", []byte("838:59:59"), "838:59:59"},
		{"datetime from time", "DATETIME", ts, "2025-01-14 09:30:05"},
		{"timestamp from text", "TIMESTAMP", []byte("2025-01-14 09:30:05.123456"), "2025-01-14 09:30:05"},
		{"enum", "ENUM('a','b')", []byte("b"), "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.typeName, tt.raw)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q, %v) = %#v, want %#v", tt.typeName, tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecode_JSONPassthrough(t *testing.T) {
	got, err := Decode("JSON", []byte(`{"a":[1,2]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	raw, ok := got.(json.RawMessage)
	if !ok {
		t.Fatalf("Decode() type = %T, want json.RawMessage", got)
	}
	if string(raw) != `{"a":[1,2]}` {
		t.Errorf("Decode() = %s", raw)
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		raw      any
		wantErr  error
	}{
		{"unsigned negative", "INT UNSIGNED", int64(-1), ErrDecode},
		{"unsigned overflow", "BIGINT UNSIGNED", []byte("18446744073709551616"), ErrDecode},
		{"signed garbage", "INT", []byte("abc"), ErrDecode},
		{"decimal garbage", "DECIMAL", []byte("1.2.3"), ErrDecode},
		{"bad date", "DATE", []byte("14/01/2025"), ErrDecode},
		{"bad time", "TIME", []byte("noon"), ErrDecode},
		{"invalid json", "JSON", []byte("{"), ErrDecode},
		{"text from number", "VARCHAR(10)", int64(5), ErrDecode},
		{"unsupported type", "GEOMETRY", []byte{1, 2}, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.typeName, tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("Decode() = %#v, want nil", got)
			}
		})
	}
}
