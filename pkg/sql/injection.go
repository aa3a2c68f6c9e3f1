package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a query parameter flagged as a SQL
// injection attempt.
type InjectionCheckResult struct {
	Index       int    // zero-based position of the parameter
	Fingerprint string // libinjection fingerprint of the detected pattern
	Value       any    // the value that was checked
}

// CheckParameterForInjection uses libinjection to detect SQL injection
// patterns in a single parameter value.
//
// Only string values are checked - numbers, booleans, and other types cannot
// carry injection payloads and always pass.
func CheckParameterForInjection(index int, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			Index:       index,
			Fingerprint: string(fingerprint),
			Value:       value,
		}
	}
	return nil
}

// CheckParameters screens all positional query parameters and returns a
// result for each one that failed the injection check. An empty slice means
// all parameters are clean.
func CheckParameters(params []any) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for i, value := range params {
		if result := CheckParameterForInjection(i, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
