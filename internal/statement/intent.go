package statement

import (
	"fmt"
	"strings"
)

// Intent is the kind of statement inferred from its leading keyword.
type Intent int

// Statement intents.
const (
	IntentOther Intent = iota
	IntentSelect
	IntentInsert
	IntentCreate
	IntentUpdate
	IntentDelete
	IntentDrop
	IntentAlter
)

var intentKeywords = []struct {
	prefix string
	intent Intent
}{
	{"SELECT", IntentSelect},
	{"INSERT", IntentInsert},
	{"CREATE", IntentCreate},
	{"UPDATE", IntentUpdate},
	{"DELETE", IntentDelete},
	{"DROP", IntentDrop},
	{"ALTER", IntentAlter},
}

// String returns the leading keyword of the intent in lower case.
func (i Intent) String() string {
	for _, kw := range intentKeywords {
		if kw.intent == i {
			return strings.ToLower(kw.prefix)
		}
	}
	return "other"
}

// Creates reports whether a successful statement of this intent creates
// something (rows or a schema object).
func (i Intent) Creates() bool {
	return i == IntentInsert || i == IntentCreate
}

// Classify infers the intent of query from its prefix.
func Classify(query string) (Intent, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return IntentOther, fmt.Errorf("%w: Query cannot be empty", ErrInvalidInput)
	}
	for _, kw := range intentKeywords {
		if strings.HasPrefix(q, kw.prefix) {
			return kw.intent, nil
		}
	}
	return IntentOther, nil
}

// CheckFetch admits only SELECT statements.
func CheckFetch(query string) error {
	intent, err := Classify(query)
	if err != nil {
		return err
	}
	if intent != IntentSelect {
		return fmt.Errorf("%w: Only SELECT queries are allowed", ErrInvalidInput)
	}
	return nil
}

// CheckExecute admits every statement except SELECT and returns its intent.
func CheckExecute(query string) (Intent, error) {
	intent, err := Classify(query)
	if err != nil {
		return IntentOther, err
	}
	if intent == IntentSelect {
		return IntentOther, fmt.Errorf("%w: SELECT queries should use GET method instead", ErrInvalidInput)
	}
	return intent, nil
}
