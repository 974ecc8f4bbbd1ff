package pep440

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, v *Version)
	}{
		{
			name:  "simple release",
			input: "1.2.3",
			check: func(t *testing.T, v *Version) {
				assert.Equal(t, []int{1, 2, 3}, v.Release)
				assert.Equal(t, 0, v.Epoch)
				assert.Nil(t, v.Pre)
			},
		},
		{
			name:  "epoch",
			input: "2!1.0",
			check: func(t *testing.T, v *Version) {
				assert.Equal(t, 2, v.Epoch)
				assert.Equal(t, []int{1, 0}, v.Release)
			},
		},
		{
			name:  "pre release normalized",
			input: "1.0Alpha1",
			check: func(t *testing.T, v *Version) {
				require.NotNil(t, v.Pre)
				assert.Equal(t, "a", v.Pre.Label)
				assert.Equal(t, 1, v.Pre.Num)
			},
		},
		{
			name:  "rc spelled as c",
			input: "1.0c2",
			check: func(t *testing.T, v *Version) {
				require.NotNil(t, v.Pre)
				assert.Equal(t, "rc", v.Pre.Label)
				assert.Equal(t, 2, v.Pre.Num)
			},
		},
		{
			name:  "post release",
			input: "1.0.post4",
			check: func(t *testing.T, v *Version) {
				require.NotNil(t, v.Post)
				assert.Equal(t, 4, *v.Post)
			},
		},
		{
			name:  "implicit post release",
			input: "1.0-2",
			check: func(t *testing.T, v *Version) {
				require.NotNil(t, v.Post)
				assert.Equal(t, 2, *v.Post)
			},
		},
		{
			name:  "dev release without number",
			input: "1.0.dev",
			check: func(t *testing.T, v *Version) {
				require.NotNil(t, v.Dev)
				assert.Equal(t, 0, *v.Dev)
			},
		},
		{
			name:  "local version",
			input: "1.0+ubuntu.1",
			check: func(t *testing.T, v *Version) {
				assert.Equal(t, "ubuntu.1", v.Local)
			},
		},
		{
			name:  "leading v and whitespace",
			input: "  v1.4.0 ",
			check: func(t *testing.T, v *Version) {
				assert.Equal(t, []int{1, 4, 0}, v.Release)
			},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "not a version", input: "dog", wantErr: true},
		{name: "wildcard is not a version", input: "1.0.*", wantErr: true},
		{name: "trailing garbage", input: "1.0.3gamma", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, v)
		})
	}
}

// TestVersionOrdering walks the canonical ordering chain: each entry must
// sort strictly before the next one.
func TestVersionOrdering(t *testing.T) {
	ordered := []string{
		"1.0.dev456",
		"1.0a1",
		"1.0a2.dev456",
		"1.0a12.dev456",
		"1.0a12",
		"1.0b1.dev456",
		"1.0b2",
		"1.0b2.post345.dev456",
		"1.0b2.post345",
		"1.0rc1.dev456",
		"1.0rc1",
		"1.0",
		"1.0+abc.5",
		"1.0+abc.7",
		"1.0+5",
		"1.0.post456.dev34",
		"1.0.post456",
		"1.1.dev1",
		"1!0.5",
	}

	for i := 1; i < len(ordered); i++ {
		a := MustParse(ordered[i-1])
		b := MustParse(ordered[i])
		assert.True(t, a.LessThan(b), "%s should sort before %s", ordered[i-1], ordered[i])
		assert.True(t, !b.LessThan(a), "%s should not sort before %s", ordered[i], ordered[i-1])
	}
}

func TestVersionEquality(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"1.0", "1.0.0"},
		{"1.0", "v1.0"},
		{"1.0alpha1", "1.0a1"},
		{"1.0.post0", "1.0-0"},
		{"1.0RC1", "1.0c1"},
	}

	for _, tt := range tests {
		t.Run(tt.a+" == "+tt.b, func(t *testing.T) {
			assert.True(t, MustParse(tt.a).Equal(MustParse(tt.b)))
		})
	}
}

func TestSort(t *testing.T) {
	vs := []*Version{
		MustParse("2.0"),
		MustParse("1.0rc1"),
		MustParse("1.0"),
		MustParse("1.0.post1"),
	}
	Sort(vs)

	got := make([]string, len(vs))
	for i, v := range vs {
		got[i] = v.String()
	}
	assert.Equal(t, []string{"1.0rc1", "1.0", "1.0.post1", "2.0"}, got)
}

func TestIsPrerelease(t *testing.T) {
	assert.True(t, MustParse("1.0a1").IsPrerelease())
	assert.True(t, MustParse("1.0.dev3").IsPrerelease())
	assert.False(t, MustParse("1.0").IsPrerelease())
	assert.False(t, MustParse("1.0.post1").IsPrerelease())
}
