package sqlcheck

import (
	"fmt"
	"strings"
	"unicode"

	libinjection "github.com/corazawaf/libinjection-go"
)

// MaxIdentifierLength bounds database, schema and table names accepted from requests.
const MaxIdentifierLength = 256

// ReasonInjection is the violation reason for libinjection matches.
const ReasonInjection = "looks like SQL injection"

// IdentifierViolation describes why a request identifier was rejected.
type IdentifierViolation struct {
	Name        string // Query parameter name
	Value       string
	Reason      string
	Fingerprint string // libinjection fingerprint, when detected as SQLi
}

func (v *IdentifierViolation) Error() string {
	return fmt.Sprintf("invalid %s: %s", v.Name, v.Reason)
}

// CheckIdentifier screens a database object name supplied by a client.
// Empty values pass; callers decide whether a name is required. Oversized
// values, control characters and libinjection matches are rejected.
func CheckIdentifier(name, value string) *IdentifierViolation {
	if value == "" {
		return nil
	}
	if len(value) > MaxIdentifierLength {
		return &IdentifierViolation{Name: name, Value: value, Reason: fmt.Sprintf("longer than %d characters", MaxIdentifierLength)}
	}
	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return &IdentifierViolation{Name: name, Value: value, Reason: "contains control characters"}
	}
	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return &IdentifierViolation{Name: name, Value: value, Reason: ReasonInjection, Fingerprint: string(fingerprint)}
	}
	return nil
}

// CheckIdentifiers screens several named values and returns the first
// violation in argument order. pairs alternates name and value.
func CheckIdentifiers(pairs ...string) *IdentifierViolation {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := CheckIdentifier(pairs[i], pairs[i+1]); v != nil {
			return v
		}
	}
	return nil
}
