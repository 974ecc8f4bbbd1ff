package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqlint/reqlint/internal/pep440"
)

func versionList(ss ...string) []*pep440.Version {
	vs := make([]*pep440.Version, len(ss))
	for i, s := range ss {
		vs[i] = pep440.MustParse(s)
	}
	return vs
}

func TestSelectVersion(t *testing.T) {
	versions := versionList("1.0", "1.4.0", "1.5.0", "2.0.0", "2.1.0rc1")

	tests := []struct {
		name string
		set  string
		want string
	}{
		{name: "newest within range", set: ">=1.0,<2.0", want: "1.5.0"},
		{name: "unconstrained picks newest final release", set: "", want: "2.0.0"},
		{name: "prerelease only when no final qualifies", set: ">2.0.0", want: "2.1.0rc1"},
		{name: "prerelease admitted when the set names one", set: ">=2.1.0rc1", want: "2.1.0rc1"},
		{name: "nothing satisfies", set: ">=3.0", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := pep440.ParseSet(tt.set)
			require.NoError(t, err)

			got := selectVersion(versions, set)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
