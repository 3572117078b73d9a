package passport

// Result is the outcome of a photo retrieval: either the absolute path of the
// saved photo or a failure. The zero Result is a failure. The cause of a
// failure is only logged, never returned.
type Result struct {
	path string
	ok   bool
}

func succeeded(path string) Result {
	return Result{path: path, ok: true}
}

func failed() Result {
	return Result{}
}

// OK returns true if the photo was saved.
func (r Result) OK() bool {
	return r.ok
}

// Path returns the absolute path of the saved photo. The second return value
// is false if the retrieval failed.
func (r Result) Path() (string, bool) {
	return r.path, r.ok
}

func (r Result) String() string {
	if !r.ok {
		return "<unavailable>"
	}
	return r.path
}
