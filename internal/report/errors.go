package report

import "fmt"

// ImageReadError is returned when the representative image cannot be opened or
// decoded. No document is produced in that case.
type ImageReadError struct {
	Path string
	Err  error
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("read report image %s: %v", e.Path, e.Err)
}

func (e *ImageReadError) Unwrap() error {
	return e.Err
}
