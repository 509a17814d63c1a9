package sweep

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// names renders every task compactly.
func names(t *testing.T, tasks []Params) []string {
	t.Helper()

	out := make([]string, len(tasks))
	for i, task := range tasks {
		name, err := Name(task, Compact)
		require.NoError(t, err)

		out[i] = name
	}

	return out
}

func TestExpandSingleEnumeration(t *testing.T) {
	tasks, err := Expand(Spec{"lr", OneOf(0.01, 0.001, 0.0001)}, Grid)
	require.NoError(t, err)

	assert.Equal(t, []string{"lr=0.01", "lr=0.001", "lr=0.0001"}, names(t, tasks))
}

func TestExpandCartesianProduct(t *testing.T) {
	tasks, err := Expand(Spec{
		"lr", OneOf(0.01, 0.001),
		"bn", OneOf(true, false),
	}, Grid)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"lr=0.01,bn=1",
		"lr=0.01,bn=0",
		"lr=0.001,bn=1",
		"lr=0.001,bn=0",
	}, names(t, tasks))
}

func TestExpandNestedFragments(t *testing.T) {
	tasks, err := Expand(Spec{
		OneOf(
			Spec{"b", "X"},
			Spec{"b", "Y", "a", OneOf(1, 2, 3)},
		),
	}, Grid)
	require.NoError(t, err)

	assert.Equal(t, []string{"b=X", "b=Y,a=1", "b=Y,a=2", "b=Y,a=3"}, names(t, tasks))
}

func TestExpandFragmentKeepsTrailingEntries(t *testing.T) {
	tasks, err := Expand(Spec{
		"model", "resnet",
		OneOf(
			Spec{"optimizer", "sgd"},
			Spec{"optimizer", "adam", "beta1", OneOf(0.8, 0.9)},
		),
		"epochs", OneOf(10, 20),
	}, Grid)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"model=resnet,optimizer=sgd,epochs=10",
		"model=resnet,optimizer=sgd,epochs=20",
		"model=resnet,optimizer=adam,beta1=0.8,epochs=10",
		"model=resnet,optimizer=adam,beta1=0.8,epochs=20",
		"model=resnet,optimizer=adam,beta1=0.9,epochs=10",
		"model=resnet,optimizer=adam,beta1=0.9,epochs=20",
	}, names(t, tasks))
}

func TestExpandNumericSliceShorthand(t *testing.T) {
	tasks, err := Expand(Spec{
		"batch", []int{16, 32},
		"wd", []float64{0.1, 0.2, 0.3},
		"none", []int{},
	}, Grid)
	require.NoError(t, err)

	assert.Len(t, tasks, 6)
	assert.Equal(t, "batch=16,wd=0.1,none=[]", names(t, tasks)[0])
}

func TestExpandNestedEnumFlattens(t *testing.T) {
	tasks, err := Expand(Spec{"a", OneOf(1, OneOf(2, 3))}, Grid)
	require.NoError(t, err)

	assert.Equal(t, []string{"a=1", "a=2", "a=3"}, names(t, tasks))
}

func TestExpandEmptyEnumIsAValue(t *testing.T) {
	tasks, err := Expand(Spec{"tags", OneOf()}, Grid)
	require.NoError(t, err)

	assert.Equal(t, []string{"tags=[]"}, names(t, tasks))
}

func TestExpandEmptySpec(t *testing.T) {
	tasks, err := Expand(Spec{}, Grid)
	require.NoError(t, err)

	// An empty space is a single task without parameters.
	assert.Equal(t, []Params{{}}, tasks)
}

func TestExpandKeepsRangeInRandomMode(t *testing.T) {
	tasks, err := Expand(Spec{
		"lr", Uniform(0, 5),
		"bn", OneOf(true, false),
	}, Random)
	require.NoError(t, err)

	require.Len(t, tasks, 2)
	assert.Equal(t, Range{Lo: 0, Hi: 5}, tasks[0][0].Value)
	assert.Equal(t, Range{Lo: 0, Hi: 5}, tasks[1][0].Value)
}

func TestExpandMalformed(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		mode Mode
	}{
		{name: "odd length", spec: Spec{"lr", 0.1, "bn"}, mode: Grid},
		{name: "non-string name", spec: Spec{1, 2}, mode: Grid},
		{name: "fragment in value slot", spec: Spec{"a", OneOf(Spec{"b", 1, "c"})}, mode: Grid},
		{name: "range in grid mode", spec: Spec{"lr", Uniform(0.0, 1.0)}, mode: Grid},
		{name: "enum in name slot", spec: Spec{OneOf(1, 2), "x"}, mode: Grid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := Expand(tt.spec, tt.mode)

			assert.ErrorIs(t, err, ErrMalformedSpecification)
			assert.Nil(t, tasks)
		})
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	spec := Spec{
		"a", OneOf(1, 2, 3),
		OneOf(Spec{"b", "x"}, Spec{"b", "y", "c", OneOf(true, false)}),
		"d", "fixed",
	}

	first, err := Expand(spec, Grid)
	require.NoError(t, err)

	second, err := Expand(spec, Grid)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Expand() mismatch (-first +second):\n%s", diff)
	}
}

func TestExpandCountIsProductProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numParams := rapid.IntRange(1, 5).Draw(t, "numParams")

		spec := Spec{}
		want := 1

		for i := 0; i < numParams; i++ {
			size := rapid.IntRange(1, 4).Draw(t, "size")
			want *= size

			alternatives := make([]any, size)
			for j := range alternatives {
				alternatives[j] = j
			}

			spec = append(spec, rapid.StringMatching(`p[a-z]{2,6}`).Draw(t, "name"), OneOf(alternatives...))
		}

		tasks, err := Expand(spec, Grid)
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}

		if len(tasks) != want {
			t.Fatalf("Expand() produced %d tasks, want %d", len(tasks), want)
		}

		for _, task := range tasks {
			for _, param := range task {
				if _, ok := enumeration(param.Value); ok {
					t.Fatalf("task %v still holds an enumeration", task)
				}
			}
		}
	})
}
