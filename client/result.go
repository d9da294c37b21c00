package client

import "maps"

// Field verification states reported by mosparo.
const (
	FieldNotVerified = "not-verified"
	FieldValid       = "valid"
	FieldInvalid     = "invalid"
)

// Issue is a problem mosparo reported while verifying a submission.
// Remote errors are reported as an issue with a "message" entry.
type Issue map[string]any

// Message returns the issue's "message" entry, if it is a string.
func (i Issue) Message() string {
	msg, _ := i["message"].(string)

	return msg
}

// VerificationResult is the outcome of a verification call. It is
// immutable once returned.
type VerificationResult struct {
	submittable    bool
	valid          bool
	verifiedFields map[string]string
	issues         []Issue
}

// IsSubmittable reports whether mosparo accepted the submission and its
// verification signature matched.
func (r *VerificationResult) IsSubmittable() bool { return r.submittable }

// IsValid reports whether the form data was transmitted correctly.
func (r *VerificationResult) IsValid() bool { return r.valid }

// VerifiedFields returns a copy of the per-field verification states.
func (r *VerificationResult) VerifiedFields() map[string]string {
	return maps.Clone(r.verifiedFields)
}

// VerifiedField returns the verification state of a field, or
// FieldNotVerified if mosparo did not report it.
func (r *VerificationResult) VerifiedField(key string) string {
	state, ok := r.verifiedFields[key]
	if !ok {
		return FieldNotVerified
	}

	return state
}

// HasIssues reports whether mosparo reported any issue.
func (r *VerificationResult) HasIssues() bool { return len(r.issues) > 0 }

// Issues returns a deep copy of the reported issues.
func (r *VerificationResult) Issues() []Issue {
	out := make([]Issue, len(r.issues))
	for i, issue := range r.issues {
		out[i] = Issue(cloneJSON(map[string]any(issue)).(map[string]any))
	}

	return out
}

// cloneJSON copies maps and slices of a decoded JSON value recursively.
func cloneJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneJSON(item)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneJSON(item)
		}

		return out
	default:
		return v
	}
}

// DateStatistic holds the submission counts of one day.
type DateStatistic struct {
	NumberOfValidSubmissions int `json:"numberOfValidSubmissions" yaml:"numberOfValidSubmissions"`
	NumberOfSpamSubmissions  int `json:"numberOfSpamSubmissions" yaml:"numberOfSpamSubmissions"`
}

// StatisticResult holds the statistics returned by StatisticByDate.
type StatisticResult struct {
	NumberOfValidSubmissions int                      `json:"numberOfValidSubmissions" yaml:"numberOfValidSubmissions"`
	NumberOfSpamSubmissions  int                      `json:"numberOfSpamSubmissions" yaml:"numberOfSpamSubmissions"`
	NumbersByDate            map[string]DateStatistic `json:"numbersByDate" yaml:"numbersByDate"`
}
