package domain

import "errors"

var (
	ErrMissingDocument     = errors.New("missing document")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyDocument       = errors.New("document contains no pages")
	ErrDownloadFailed      = errors.New("document download failed")
	ErrInvalidBase64       = errors.New("document is not valid base64")
)
