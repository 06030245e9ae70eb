package decoder_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginflow-systems/login-etl/internal/decoder"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		expectErr bool
		expected  map[string]string
	}{
		{
			name: "well formed login event",
			body: `{"record_id":"r-1","user_id":"fetch123","device_id":"d-9","app_version":"2.3.0","created_at":"2026-01-02 15:04:05"}`,
			expected: map[string]string{
				"record_id":   "r-1",
				"user_id":     "fetch123",
				"device_id":   "d-9",
				"app_version": "2.3.0",
				"created_at":  "2026-01-02 15:04:05",
			},
		},
		{
			name: "missing fields are not a decode failure",
			body: `{"record_id":"r-2"}`,
			expected: map[string]string{
				"record_id": "r-2",
			},
		},
		{
			name: "numeric and bool scalars coerced to strings",
			body: `{"record_id":"r-3","retries":3,"trusted":true,"note":null}`,
			expected: map[string]string{
				"record_id": "r-3",
				"retries":   "3",
				"trusted":   "true",
				"note":      "",
			},
		},
		{
			name:      "invalid json",
			body:      `{"record_id":`,
			expectErr: true,
		},
		{
			name:      "not an object",
			body:      `["r-1","r-2"]`,
			expectErr: true,
		},
		{
			name:      "nested value",
			body:      `{"record_id":"r-4","device":{"id":"d-1"}}`,
			expectErr: true,
		},
		{
			name:      "empty body",
			body:      ``,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := decoder.Decode([]byte(tc.body))

			if tc.expectErr {
				require.Error(t, err)
				var decodeErr *decoder.DecodeError
				assert.True(t, errors.As(err, &decodeErr), "expected a DecodeError, got %T", err)
				return
			}

			require.NoError(t, err)
			require.Len(t, record, len(tc.expected))
			for field, want := range tc.expected {
				got, ok := record.Get(field)
				assert.True(t, ok, "field %q missing", field)
				assert.Equal(t, want, got)
			}
		})
	}
}
