package services

import "errors"

var (
	ErrInputRejected    = errors.New("upload rejected")
	ErrParsingFailed    = errors.New("parsing failed")
	ErrProcessingFailed = errors.New("processing failed")
	ErrDatasetNotFound  = errors.New("dataset not found")
)
