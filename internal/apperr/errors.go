// Package apperr defines the sentinel errors shared across the generator.
package apperr

import "errors"

var (
	// ErrPathNotFound means a required local file is missing.
	ErrPathNotFound = errors.New("path not found")
	// ErrUnknownAsset means markup references an asset identifier the
	// catalog does not know; the element is left unconverted.
	ErrUnknownAsset = errors.New("unknown asset reference")
	// ErrUploadFailed wraps transport or auth failures during a blob upload.
	ErrUploadFailed = errors.New("upload failed")
	// ErrOutsideRoot means a relative-mode path does not lie under the archive root.
	ErrOutsideRoot = errors.New("path outside archive root")
	// ErrNoCourses means the catalog holds nothing to generate.
	ErrNoCourses = errors.New("no courses in catalog")
)
