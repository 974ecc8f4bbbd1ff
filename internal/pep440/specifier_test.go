package pep440

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClause(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOp  string
		wantErr bool
	}{
		{name: "minimum version", input: ">=1.2.3", wantOp: ">="},
		{name: "spaces around operator", input: "== 1.0", wantOp: "=="},
		{name: "compatible release", input: "~=2.2", wantOp: "~="},
		{name: "wildcard equality", input: "==1.4.*", wantOp: "=="},
		{name: "arbitrary equality", input: "===1.0-custom", wantOp: "==="},
		{name: "no operator", input: "1.2.3", wantErr: true},
		{name: "missing version", input: ">=", wantErr: true},
		{name: "bad version", input: ">=banana", wantErr: true},
		{name: "compatible release single segment", input: "~=2", wantErr: true},
		{name: "compatible release with local", input: "~=2.2+local", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseClause(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, spec.Op)
		})
	}
}

func TestSpecifierCheck(t *testing.T) {
	tests := []struct {
		clause  string
		version string
		want    bool
	}{
		// Equality
		{"==1.0", "1.0", true},
		{"==1.0", "1.0.0", true},
		{"==1.0", "1.0.1", false},
		{"==1.0", "1.0+local", true}, // local ignored when clause has none
		{"==1.0+local", "1.0+local", true},
		{"==1.0+local", "1.0+other", false},
		{"!=1.5", "1.5", false},
		{"!=1.5", "1.6", true},

		// Wildcards
		{"==1.1.*", "1.1", true},
		{"==1.1.*", "1.1.9", true},
		{"==1.1.*", "1.1.post1", true},
		{"==1.1.*", "1.2", false},
		{"!=1.1.*", "1.1.2", false},
		{"!=1.1.*", "1.2.0", true},

		// Ordered comparisons
		{">=1.0", "1.0", true},
		{">=1.0", "0.9", false},
		{"<=1.0", "1.0", true},
		{"<=1.0", "1.0.1", false},
		{"<2.0", "1.9", true},
		{"<2.0", "2.0", false},
		{">1.0", "1.1", true},
		{">1.0", "1.0", false},

		// Exclusive bounds and release siblings
		{"<1.0", "1.0rc1", false},
		{"<1.0rc2", "1.0rc1", true},
		{">1.0", "1.0.post1", false},
		{">1.0.post1", "1.0.post2", true},
		{">1.0", "1.0+local", false},
		{">1.0", "1.1", true},

		// Compatible release
		{"~=2.2", "2.2", true},
		{"~=2.2", "2.9", true},
		{"~=2.2", "3.0", false},
		{"~=2.2", "2.1", false},
		{"~=1.4.5", "1.4.9", true},
		{"~=1.4.5", "1.5.0", false},
		{"~=1.4.5", "1.4.4", false},

		// Arbitrary equality
		{"===1.0", "1.0", true},
		{"===1.0", "1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.clause+" vs "+tt.version, func(t *testing.T) {
			spec, err := ParseClause(tt.clause)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Check(MustParse(tt.version)))
		})
	}
}

func TestParseSet(t *testing.T) {
	set, err := ParseSet(">=4.35.0, <5.0, !=4.40.1")
	require.NoError(t, err)
	require.Len(t, set, 3)
	assert.Equal(t, ">=4.35.0,<5.0,!=4.40.1", set.String())

	_, err = ParseSet(">=1.0,,<2.0")
	require.Error(t, err)

	empty, err := ParseSet("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.True(t, empty.Check(MustParse("0.0.1")))
}

func TestSpecifierSetMatch(t *testing.T) {
	tests := []struct {
		name    string
		set     string
		version string
		want    bool
	}{
		{name: "within range", set: ">=1.0,<2.0", version: "1.5", want: true},
		{name: "above range", set: ">=1.0,<2.0", version: "2.0", want: false},
		{name: "prerelease excluded by default", set: ">=1.0", version: "2.0rc1", want: false},
		{name: "prerelease allowed when named", set: ">=2.0rc1", version: "2.0rc2", want: true},
		{name: "empty set excludes prereleases", set: "", version: "1.0a1", want: false},
		{name: "empty set matches final releases", set: "", version: "1.0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseSet(tt.set)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Match(MustParse(tt.version)))
		})
	}
}

func TestSpecifierSetConflicts(t *testing.T) {
	tests := []struct {
		name string
		set  string
		want bool
	}{
		{name: "empty range", set: ">=2.0,<1.0", want: true},
		{name: "touching exclusive bounds", set: ">1.0,<=1.0", want: true},
		{name: "touching inclusive bounds", set: ">=1.0,<=1.0", want: false},
		{name: "contradictory pins", set: "==1.0,==2.0", want: true},
		{name: "pin excluded by inequality", set: "==1.0,!=1.0", want: true},
		{name: "pin outside range", set: "==3.0,<2.0", want: true},
		{name: "pin inside range", set: "==1.5,>=1.0,<2.0", want: false},
		{name: "compatible release conflict", set: "~=1.4.5,>=2.0", want: true},
		{name: "compatible release fine", set: "~=1.4.5,<1.5", want: false},
		{name: "plain minimum", set: ">=4.35.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseSet(tt.set)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Conflicts())
		})
	}
}
