package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/activegraph/internal/compiler"
)

// LoadResult contains an ontology loaded from CUE files.
type LoadResult struct {
	Ontology  *compiler.Ontology
	Files     []string // CUE files in load order
	FileCount int      // Number of CUE files found
}

// LoadError represents an error that occurred during ontology loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadOntology compiles the CUE files named by paths. A directory
// contributes every .cue file below it in lexical order. Loading stops at
// the first error, which is always a *LoadError.
func LoadOntology(paths ...string) (*LoadResult, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("ontology path not found: %s", path)}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing ontology path: %v", err)}
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		found, err := compiler.FindFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %v", paths)}
	}

	onto, err := compiler.LoadFiles(files...)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if onto.Empty() {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no prefixes, classes, properties or resources found"}
	}

	return &LoadResult{
		Ontology:  onto,
		Files:     files,
		FileCount: len(files),
	}, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // File could not be read
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation failed
	ErrCodeWriteFailed = "E007" // Store write error
	ErrCodeQuery       = "E008" // Query failed

	// Ontology shape errors
	ErrCodeMissingField = "E010" // Required field missing or wrong type
	ErrCodeBadValue     = "E011" // Resource value cannot be converted
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeBuildFailed
	case "uri", "type", "label", "domain", "range", "subClassOf", "prefix":
		return ErrCodeMissingField
	case "values", "value", "ref", "datatype":
		return ErrCodeBadValue
	default:
		return ErrCodeGeneric
	}
}
