package sweep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(`
params:
  - model: resnet
    lr: [0.01, 0.001]
  - dropout: {uniform: [0, 0.5]}
  - $oneof:
      - {optimizer: sgd}
      - optimizer: adam
        beta1: [0.8, 0.9]
  - tags: []
`))
	require.NoError(t, err)

	want := Spec{
		"model", "resnet",
		"lr", Enum{0.01, 0.001},
		"dropout", Range{Lo: 0, Hi: 0.5},
		Enum{
			Spec{"optimizer", "sgd"},
			Spec{"optimizer", "adam", "beta1", Enum{0.8, 0.9}},
		},
		"tags", Enum{},
	}

	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("ParseSpec() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSpecExpands(t *testing.T) {
	spec, err := ParseSpec([]byte(`
params:
  $oneof:
    - {b: X}
    - {b: Y, a: [1, 2, 3]}
`))
	require.NoError(t, err)

	tasks, err := Expand(spec, Grid)
	require.NoError(t, err)

	assert.Equal(t, []string{"b=X", "b=Y,a=1", "b=Y,a=2", "b=Y,a=3"}, names(t, tasks))
}

func TestParseSpecScalars(t *testing.T) {
	spec, err := ParseSpec([]byte(`
params:
  - epochs: 10
    bn: true
    name: "run/1"
    wd: 0.5
    none: null
`))
	require.NoError(t, err)

	assert.Equal(t, Spec{"epochs", 10, "bn", true, "name", "run/1", "wd", 0.5, "none", nil}, spec)
}

func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid yaml", data: "params: [\n"},
		{name: "missing params", data: "other: 1\n"},
		{name: "scalar params", data: "params: 3\n"},
		{name: "oneof not a list", data: "params:\n  - $oneof: 3\n"},
		{name: "bad uniform", data: "params:\n  - lr: {uniform: [1]}\n"},
		{name: "list item not a mapping", data: "params:\n  - 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.data))

			assert.ErrorIs(t, err, ErrMalformedSpecification)
		})
	}
}

func TestLoadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params:\n  - lr: [0.1, 0.2]\n"), 0o644))

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, Spec{"lr", Enum{0.1, 0.2}}, spec)

	_, err = LoadSpec(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
