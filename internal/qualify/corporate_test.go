package qualify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLargeRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  bool
	}{
		{"501-1K", true},
		{"1K-5K", true},
		{"5K-10K", true},
		{"10K-50K", true},
		{"50K-100K", true},
		{"100K+", true},
		{"501-1000", true},
		{"1001-5000", true},
		{"5001-10000", true},
		{"10001+", true},
		{"1-10", false},
		{"11-50", false},
		{"51-200", false},
		{"201-500", false},
		{"", false},
		{"unknown", false},
		{"501-1k", false}, // exact membership, not case folded
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsLargeRange(tt.token))
		})
	}
}

func TestIsLargeRange_Deterministic(t *testing.T) {
	t.Parallel()

	for range 100 {
		assert.True(t, IsLargeRange("1K-5K"))
		assert.False(t, IsLargeRange("51-200"))
	}
}

func TestBrandList_Match(t *testing.T) {
	t.Parallel()

	brands := NewBrandList(DefaultBrands)

	tests := []struct {
		name    string
		company string
		want    bool
	}{
		{"exact brand", "Carrefour", true},
		{"brand inside longer name", "Groupe Carrefour France", true},
		{"case insensitive", "CARREFOUR market", true},
		{"accented brand folded", "Societe Generale Securities", true},
		{"accented input folded", "Société Générale", true},
		{"unrelated company", "Petite Agence Lyon", false},
		{"empty name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, brands.Match(tt.company))
		})
	}
}

func TestBrandList_ExtraTokens(t *testing.T) {
	t.Parallel()

	brands := NewBrandList([]string{"Acme", "acme", "  "})
	assert.Equal(t, 1, brands.Len())
	assert.True(t, brands.Match("ACME Industries"))
	assert.False(t, brands.Match("Beta Corp"))
}

func TestLoadBrandList_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "brands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brands:\n  - Initech\n  - Globex\n"), 0o600))

	brands, err := LoadBrandList(path, []string{"Umbrella"})
	require.NoError(t, err)

	assert.True(t, brands.Match("Initech SARL"))
	assert.True(t, brands.Match("Globex France"))
	assert.True(t, brands.Match("Umbrella Paris"))
	assert.False(t, brands.Match("Carrefour")) // file replaces the default set
}

func TestLoadBrandList_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	brands, err := LoadBrandList("", nil)
	require.NoError(t, err)
	assert.True(t, brands.Match("Groupe Carrefour France"))
}
