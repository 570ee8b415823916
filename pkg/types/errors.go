package types

import "errors"

// Standard errors returned by the stores and engines.
var (
	// ErrNotFound is returned when a record id does not exist in a store.
	ErrNotFound = errors.New("record not found")

	// ErrBlobNotFound is returned by the blob store for an unknown blob id.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrQuotaExceeded is returned when a write would push the primary
	// storage medium past its byte quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrImportCancelled is returned when the user declines to create the
	// categories an import file requires.
	ErrImportCancelled = errors.New("import cancelled by user")

	// ErrInvalidJSON is returned when an import file cannot be parsed at
	// all, as opposed to parsing but failing schema validation.
	ErrInvalidJSON = errors.New("导入文件不是有效的 JSON")

	// ErrFileTooLarge is returned before parsing when an import file
	// exceeds the family's size limit.
	ErrFileTooLarge = errors.New("导入文件超过大小限制")

	// ErrUnknownFamily is returned for a family name outside the known set.
	ErrUnknownFamily = errors.New("unknown record family")
)
