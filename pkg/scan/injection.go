// Package scan runs bound parameter values through libinjection
// before they are spliced into a statement. Only string values are
// scanned: numbers cannot carry injection payloads, and raw values
// are the caller-audited escape hatch the scan must not second-guess.
package scan

import (
	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/PrivateRookie/psql/pkg/template"
)

// Result describes one parameter value that tripped the scanner.
type Result struct {
	ParamName   string // name of the parameter that failed the check
	Fingerprint string // libinjection fingerprint of the detected pattern
	Value       string // the offending string value
}

// CheckValue scans a bound value. Array values are scanned element by
// element; the first hit wins. Returns nil when the value is clean.
func CheckValue(name string, value template.ParamValue) *Result {
	switch v := value.(type) {
	case template.Str:
		if isSQLi, fingerprint := libinjection.IsSQLi(string(v)); isSQLi {
			return &Result{ParamName: name, Fingerprint: string(fingerprint), Value: string(v)}
		}
	case template.Array:
		for _, item := range v {
			if res := CheckValue(name, item); res != nil {
				return res
			}
		}
	}
	return nil
}

// CheckContext scans every value of a render context and returns the
// results for each parameter that failed. Clean contexts return nil.
func CheckContext(ctx template.Context) []*Result {
	var results []*Result
	for name, value := range ctx {
		if res := CheckValue(name, value); res != nil {
			results = append(results, res)
		}
	}
	return results
}
