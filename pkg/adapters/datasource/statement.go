package datasource

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// rowReturningPrefixes are matched against the upper-cased, trimmed statement text.
var rowReturningPrefixes = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "PRAGMA"}

// IsRowReturning classifies a statement by its leading keyword.
func IsRowReturning(stmt string) bool {
	upper := strings.ToUpper(strings.TrimSpace(stmt))
	for _, p := range rowReturningPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

var dmlKeywords = map[string]bool{"INSERT": true, "UPDATE": true, "DELETE": true, "REPLACE": true}

// IsDML reports whether stmt opens with INSERT, UPDATE, DELETE or REPLACE,
// skipping leading whitespace and comments.
func IsDML(stmt string) bool {
	return dmlKeywords[strings.ToUpper(leadingKeyword(stmt))]
}

func leadingKeyword(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n(")
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
			})
			if end < 0 {
				return s
			}
			return s[:end]
		}
	}
}

// ColumnNames returns names, synthesizing column_N labels for missing ones.
// width is the arity of the first row and is used when names is empty.
func ColumnNames(names []string, width int) []string {
	if len(names) == 0 {
		names = make([]string, width)
	} else {
		names = append([]string(nil), names...)
	}
	for i, n := range names {
		if n == "" {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	return names
}

// NormalizeValue converts a driver value into one of nil, int64, float64, string or bool.
// typeName is the database type of the column and guides decoding of raw bytes.
func NormalizeValue(v any, typeName string) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string, int64, float64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return normalizeUint(uint64(x))
	case uint64:
		return normalizeUint(x)
	case float32:
		return float64(x)
	case []byte:
		return normalizeBytes(x, typeName)
	case time.Time:
		return formatTime(x, typeName)
	case [16]byte:
		return uuid.UUID(x).String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprint(x)
		}
		if _, nested := dv.(driver.Valuer); nested {
			return fmt.Sprint(dv)
		}
		return NormalizeValue(dv, typeName)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return strconv.FormatUint(u, 10)
	}
	return int64(u)
}

func normalizeBytes(b []byte, typeName string) any {
	t := strings.ToUpper(typeName)
	s := string(b)
	switch {
	case strings.Contains(t, "INT") || t == "YEAR":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case t == "FLOAT" || t == "DOUBLE" || t == "REAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case t == "BIT" && len(b) == 1:
		return b[0] != 0
	}
	if utf8.Valid(b) {
		return s
	}
	return "0x" + hex.EncodeToString(b)
}

func formatTime(t time.Time, typeName string) string {
	if strings.EqualFold(typeName, "DATE") {
		return t.Format("2006-01-02")
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.999999")
	}
	return t.Format("2006-01-02 15:04:05")
}

// AsString renders a raw catalog value as text. nil becomes "".
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(NormalizeValue(x, ""))
	}
}

// AsNullableString renders a raw catalog value as text, keeping nil as nil.
func AsNullableString(v any) *string {
	if v == nil {
		return nil
	}
	s := AsString(v)
	return &s
}

// AsBool interprets a raw catalog flag (0/1, "YES"/"NO", bool).
func AsBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case []byte, string:
		s := strings.ToUpper(strings.TrimSpace(AsString(x)))
		return s == "1" || s == "YES" || s == "TRUE"
	default:
		n := NormalizeValue(x, "")
		if i, ok := n.(int64); ok {
			return i != 0
		}
		return false
	}
}
