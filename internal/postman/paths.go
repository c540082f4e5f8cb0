package postman

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"

	"github.com/mark3labs/swagger2postman/internal/spec"
)

// DefaultFolderSegment is the segment that names a folder when an operation
// has no tags. Paths are expected to look like /<version>/<service>/<resource>.
const DefaultFolderSegment = 2

// FolderKey picks the folder for a path: the first tag of op, or the path
// segment at index segment when op carries no tags.
func FolderKey(path string, op *openapi2.Operation, segment int) (string, error) {
	if op != nil && len(op.Tags) > 0 {
		return op.Tags[0], nil
	}
	segs := Segments(path)
	if segment < 0 || segment >= len(segs) {
		return "", &spec.SpecError{
			Code:        spec.StructureError,
			Message:     fmt.Sprintf("path %q has no tags and only %d segment(s); deriving a folder name needs at least %d", path, len(segs), segment+1),
			JSONPointer: spec.Pointer("/paths", path),
		}
	}
	return segs[segment], nil
}

// Segments splits a path on "/" after trimming leading and trailing slashes.
func Segments(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

var placeholderRe = regexp.MustCompile(`\{\{[^{}]*\}\}|\{([^{}]+)\}`)

// NormalizePath rewrites {name} placeholders to Postman's :name form.
// {version} becomes the collection variable {{version}}; placeholders that
// are already double-braced are kept.
func NormalizePath(path string) string {
	return placeholderRe.ReplaceAllStringFunc(path, func(m string) string {
		if strings.HasPrefix(m, "{{") {
			return m
		}
		name := m[1 : len(m)-1]
		if name == "version" {
			return "{{version}}"
		}
		return ":" + name
	})
}
