package ir

import "strings"

// LocalName extracts the local part of a URI: everything after the final
// '#' or '/'.
//
// Returns ErrMalformedURI if the URI has no separator.
func LocalName(uri string) (string, error) {
	idx := strings.LastIndexAny(uri, "#/")
	if idx < 0 {
		return "", NewError(CodeMalformedURI, "uri has no '#' or '/' separator", uri)
	}
	return uri[idx+1:], nil
}
