package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathSpecSplit(t *testing.T) {
	segments, params, ok := Path("users", 1, map[string]any{"q": "woof"}).Split()
	assert.Equal(t, []string{"users", "1"}, segments)
	assert.True(t, ok)
	assert.Equal(t, Params{"q": "woof"}, params)

	segments, params, ok = Path("users").Split()
	assert.Equal(t, []string{"users"}, segments)
	assert.False(t, ok)
	assert.Nil(t, params)
}

func TestPathSpecStringMaps(t *testing.T) {
	params, ok := Path("x", map[string]string{"a": "b"}).Params()
	assert.True(t, ok)
	assert.Equal(t, Params{"a": "b"}, params)

	params, ok = Path("x", map[string][]string{"a": {"b", "c"}}).Params()
	assert.True(t, ok)
	assert.Equal(t, "a=b&a=c", BuildQueryString(params))
}

func TestPathSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    PathSpec
		wantErr bool
	}{
		{name: "segments", spec: Path("users", "1")},
		{name: "segments_with_params", spec: Path("users", Params{"a": 1})},
		{name: "nested", spec: Path([]string{"users"})},
		{name: "empty", spec: Path(), wantErr: true},
		{name: "params_only", spec: Path(Params{"a": 1}), wantErr: true},
		{name: "empty_nested", spec: Path([]string{}), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyPath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathSpecWithoutParams(t *testing.T) {
	spec := Path("users", 1, Params{"a": 1})
	stripped := spec.WithoutParams()

	assert.Equal(t, PathSpec{"users", 1}, stripped)
	assert.Len(t, spec, 3)
	_, ok := stripped.Params()
	assert.False(t, ok)
}
