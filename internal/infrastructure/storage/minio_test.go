package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "reports/acme/s-1.json", ReportKey("acme", "s-1"))
	assert.Equal(t, "transcripts/acme/s-1.txt", TranscriptKey("acme", "s-1"))
	assert.Equal(t, "recordings/acme/s-1.ogg", RecordingKey("acme", "s-1"))
}
