package migrate

import (
	"regexp"
	"strings"
)

// Field is one labeled section of the sandbox request issue form.
type Field struct {
	Name    string
	Heading string
	Default string

	pattern *regexp.Regexp
}

func newField(name, heading, def string) Field {
	return Field{
		Name:    name,
		Heading: heading,
		Default: def,
		// First non-empty line run after the heading; "." never crosses a newline.
		pattern: regexp.MustCompile(`(?m)` + regexp.QuoteMeta("### "+heading) + `\n+(.*)$`),
	}
}

// Issue form sections read by the migration.
var (
	FieldSourceSandbox = newField("sourceSandbox", "Pick a source sandbox to refresh from", "")
	FieldDaysToKeep    = newField("daysToKeep", "How long should the sandbox be kept?", DefaultDaysToKeep)
	FieldUserEmail     = newField("userEmail", "Email of the user to which this sandbox should be assigned", "")
)

// ExtractField returns the trimmed text following the field's heading, or
// the field default when the heading is absent or has nothing after it.
// Only the first occurrence of the heading is considered.
func ExtractField(body string, f Field) string {
	m := f.pattern.FindStringSubmatch(body)
	if m == nil {
		return f.Default
	}
	value := strings.TrimSpace(m[1])
	if value == "" {
		return f.Default
	}
	return value
}

// ExtractFields pulls every migration field out of an issue body.
func ExtractFields(body string) ExtractedFields {
	return ExtractedFields{
		SourceSandbox: ExtractField(body, FieldSourceSandbox),
		DaysToKeep:    ExtractField(body, FieldDaysToKeep),
		UserEmail:     ExtractField(body, FieldUserEmail),
	}
}
