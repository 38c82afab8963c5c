package relay

import "fmt"

// ErrorKind classifies a failed message cycle.
type ErrorKind int

const (
	// KindDecode means the frame was not a JSON object or its data was not base64.
	KindDecode ErrorKind = iota + 1
	// KindIO means the payload could not be written to local disk.
	KindIO
	// KindUpload means the storage call failed.
	KindUpload
)

func (k ErrorKind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindIO:
		return "io"
	case KindUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Terminal reports whether an error of this kind ends the connection.
// Only upload failures leave the connection open.
func (k ErrorKind) Terminal() bool {
	return k != KindUpload
}

// Error is the single error type produced by Processor.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reply is the text sent to the client for this error.
func (e *Error) Reply() string {
	if e.Kind == KindUpload {
		return "S3 Upload Error: " + e.Err.Error()
	}
	return "Error: " + e.Err.Error()
}

func decodeErr(err error) *Error { return &Error{Kind: KindDecode, Err: err} }
func ioErr(err error) *Error     { return &Error{Kind: KindIO, Err: err} }
func uploadErr(err error) *Error { return &Error{Kind: KindUpload, Err: err} }
