package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFamily(t *testing.T) {
	for _, f := range Families {
		got, err := ParseFamily(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFamily("bookmarks")
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

func TestFamilyTraits(t *testing.T) {
	tests := []struct {
		family      Family
		singleton   bool
		attachments bool
	}{
		{FamilyLedger, false, false},
		{FamilySleep, true, false},
		{FamilyDaily, true, false},
		{FamilyDiary, true, true},
		{FamilyReading, false, true},
		{FamilyMusic, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			assert.Equal(t, tt.singleton, tt.family.SingletonPerDay())
			assert.Equal(t, tt.attachments, tt.family.HasAttachments())
			if tt.attachments {
				assert.Equal(t, int64(MaxImportSizeImage), tt.family.ImportSizeLimit())
			} else {
				assert.Equal(t, int64(MaxImportSize), tt.family.ImportSizeLimit())
			}
		})
	}
}
