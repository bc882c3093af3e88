package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarker(t *testing.T) {
	got := Marker(ExtractedFields{SourceSandbox: "prod", DaysToKeep: "30", UserEmail: "bob@example.com"})
	want := `<!-- {"id":"request-dev-sandbox","sourceSB":"prod","daysToKeep":"30","email":"bob@example.com"} -->`
	assert.Equal(t, want, got)
}

func TestAnnotateBody(t *testing.T) {
	marker := Marker(ExtractedFields{DaysToKeep: "15"})

	body, changed := AnnotateBody("request text", marker)
	assert.True(t, changed)
	assert.Equal(t, "request text\n\n"+marker, body)

	again, changed := AnnotateBody(body, marker)
	assert.False(t, changed)
	assert.Equal(t, body, again)

	empty, changed := AnnotateBody("", marker)
	assert.True(t, changed)
	assert.Equal(t, "\n\n"+marker, empty)
}
