package masker_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginflow-systems/login-etl/internal/masker"
	"github.com/loginflow-systems/login-etl/internal/models"
)

func TestMask(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		// head = first ceil(n/2) chars, masked = tail + head
		{"even length", "fetch123", "h123fetc"},
		{"odd length head is longer half", "abcde", "deabc"},
		{"two chars", "ab", "ba"},
		{"single char", "x", "x"},
		{"multibyte runes", "héllo", "lohél"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := masker.Mask(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Len(t, []rune(got), len([]rune(tc.in)))
		})
	}
}

func TestMaskRoundTrip(t *testing.T) {
	inputs := []string{
		"fetch123",
		"a",
		"ab",
		"abc",
		"abcd",
		"abcde",
		"10.0.0.255",
		"dévice-ïd-42",
		"0123456789abcdef0123456789abcdef",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			masked, err := masker.Mask(in)
			require.NoError(t, err)

			original, err := masker.Unmask(masked)
			require.NoError(t, err)
			assert.Equal(t, in, original)
		})
	}
}

func TestMaskEmpty(t *testing.T) {
	_, err := masker.Mask("")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))

	_, err = masker.Unmask("")
	require.True(t, errors.As(err, &verr))
}

func TestMaskerApply(t *testing.T) {
	t.Run("masks designated fields only", func(t *testing.T) {
		rec := &models.CleanRecord{
			RecordID:   "r-1",
			UserID:     "fetch123",
			DeviceID:   "device99",
			IP:         "10.0.0.7",
			DeviceType: "android",
			AppVersion: "1025",
		}

		m := masker.New(masker.DefaultFields())
		require.NoError(t, m.Apply(rec))

		assert.Equal(t, "h123fetc", rec.UserID)
		assert.Equal(t, "ce99devi", rec.DeviceID)
		assert.Equal(t, ".0.710.0", rec.IP)

		// Everything outside the PII list is untouched.
		assert.Equal(t, "r-1", rec.RecordID)
		assert.Equal(t, "android", rec.DeviceType)
		assert.Equal(t, "1025", rec.AppVersion)
	})

	t.Run("absent ip is skipped", func(t *testing.T) {
		rec := &models.CleanRecord{UserID: "fetch123", DeviceID: "device99"}

		m := masker.New(masker.DefaultFields())
		require.NoError(t, m.Apply(rec))
		assert.Empty(t, rec.IP)
	})

	t.Run("empty required pii is a validation failure", func(t *testing.T) {
		rec := &models.CleanRecord{UserID: "", DeviceID: "device99"}

		m := masker.New([]string{models.FieldUserID})
		err := m.Apply(rec)

		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "user_id", verr.Field)

		// Apply reports the same reason Mask itself gives for the value.
		_, maskErr := masker.Mask("")
		var maskVerr *models.ValidationError
		require.True(t, errors.As(maskErr, &maskVerr))
		assert.Equal(t, maskVerr.Reason, verr.Reason)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		rec := &models.CleanRecord{UserID: "fetch123"}

		m := masker.New([]string{"password"})
		err := m.Apply(rec)

		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "password", verr.Field)
	})
}
