package types

// Record is a persisted (id, name) row
type Record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result is the outcome envelope returned by mutating commands
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordsResult is the envelope returned by list-records.
// Records is never nil so it always encodes as a JSON array.
type RecordsResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Records []Record `json:"records"`
}

// DirectoryResult is the envelope returned by list-directory
type DirectoryResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Entries []string `json:"entries"`
}

// OK returns a successful Result
func OK() Result {
	return Result{Success: true}
}

// Failure returns a failed Result carrying err's message
func Failure(err error) Result {
	return Result{Success: false, Error: errorText(err)}
}

// RecordsFailure returns a failed RecordsResult with an empty record list
func RecordsFailure(err error) RecordsResult {
	return RecordsResult{Success: false, Error: errorText(err), Records: []Record{}}
}

// DirectoryFailure returns a failed DirectoryResult with an empty listing
func DirectoryFailure(err error) DirectoryResult {
	return DirectoryResult{Success: false, Error: errorText(err), Entries: []string{}}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}
