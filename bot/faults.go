package bot

import "fmt"

// fault is a handler-level failure carrying a stable error code for the
// handler summary logs.
type fault struct {
	code string
	op   string
	err  error
}

func (f *fault) Error() string {
	if f.err != nil {
		return fmt.Sprintf("%s: %v", f.op, f.err)
	}
	return f.op
}

func (f *fault) Unwrap() error { return f.err }

func (f *fault) Code() string { return f.code }

func fileFetchFault(err error) *fault {
	return &fault{code: "FILE_FETCH_ERROR", op: "fetch photo", err: err}
}

func sessionFault(op string, err error) *fault {
	return &fault{code: "SESSION_ERROR", op: op, err: err}
}
