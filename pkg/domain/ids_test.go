package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "verigate/pkg/domain-errors"
)

// TestParseID_TrustBoundary validates that ids arriving from URLs and tokens
// are non-empty, non-nil UUIDs.
func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE submissions;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Whitespace only", "   ", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSubmissionID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()

	for _, input := range []string{valid, "", "invalid", uuid.Nil.String()} {
		_, errSubmission := ParseSubmissionID(input)
		_, errSubject := ParseSubjectID(input)
		_, errPerson := ParsePersonID(input)
		_, errActor := ParseActorID(input)

		if input == valid {
			require.NoError(t, errSubmission)
			require.NoError(t, errSubject)
			require.NoError(t, errPerson)
			require.NoError(t, errActor)
			continue
		}
		require.Error(t, errSubmission, input)
		require.Error(t, errSubject, input)
		require.Error(t, errPerson, input)
		require.Error(t, errActor, input)
	}
}

func TestIDText(t *testing.T) {
	raw := uuid.New()
	id := SubmissionID(raw)

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, raw.String(), string(text))
	assert.Equal(t, raw.String(), id.String())
	assert.False(t, id.IsNil())
	assert.True(t, SubmissionID{}.IsNil())
}
