package migrate

import (
	"fmt"
	"strings"
)

// Marker is the hidden HTML comment appended to a migrated issue so later
// workflows can read the request fields without re-parsing the form.
// The values are interpolated verbatim; readers match it byte for byte.
func Marker(fields ExtractedFields) string {
	return fmt.Sprintf(`<!-- {"id":"%s","sourceSB":"%s","daysToKeep":"%s","email":"%s"} -->`,
		RequestID, fields.SourceSandbox, fields.DaysToKeep, fields.UserEmail)
}

// AnnotateBody appends marker to body separated by a blank line.
// ok is false when body already carries the marker.
func AnnotateBody(body, marker string) (annotated string, ok bool) {
	if strings.Contains(body, marker) {
		return body, false
	}
	return body + "\n\n" + marker, true
}
