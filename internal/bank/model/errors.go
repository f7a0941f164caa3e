package model

import "errors"

// Error taxonomy of the pipeline. Wrapped errors carry the offending path;
// test for a kind with errors.Is.
var (
	ErrIO                  = errors.New("io error")
	ErrParse               = errors.New("parse error")
	ErrGrammarInit         = errors.New("grammar initialization failed")
	ErrFileNotFound        = errors.New("file not found")
	ErrDirectoryNotFound   = errors.New("directory not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
