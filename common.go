package sweep

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

//////
// Common arguments.
//////

// equalOpts define structural equality of parameter values. Named callables
// compare by name, since functions never compare equal.
var equalOpts = cmp.Options{
	cmp.Comparer(func(a, b NamedFunc) bool { return a.Name == b.Name }),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// ExtractCommon factors out the parameters every task agrees on.
//
// The first task is the reference. One of its names is common when every
// other task either lacks it or holds an equal effective value. Names whose
// reference value is a Range are never common.
//
// Returns:
//   - Params: the common parameters, in reference order, one per name
//   - []Params: copies of tasks with every occurrence of a common name removed
//
// Merging the common parameters with a stripped task yields the same
// effective values as the original task for every name it held.
func ExtractCommon(tasks []Params) (Params, []Params) {
	common := Params{}
	if len(tasks) == 0 {
		return common, []Params{}
	}

	reference := tasks[0]
	seen := make(map[string]bool, len(reference))

	for _, param := range reference {
		if seen[param.Name] {
			continue
		}

		seen[param.Name] = true

		value, _ := reference.Lookup(param.Name)
		if _, isRange := value.(Range); isRange {
			continue
		}

		if unchanged(param.Name, value, tasks[1:]) {
			common = append(common, Param{Name: param.Name, Value: value})
		}
	}

	stripped := make([]Params, len(tasks))
	for i, task := range tasks {
		stripped[i] = without(task, common)
	}

	return common, stripped
}

// unchanged reports whether every task lacks name or holds value for it.
func unchanged(name string, value any, tasks []Params) bool {
	for _, task := range tasks {
		other, ok := task.Lookup(name)
		if !ok {
			continue
		}

		if !valuesEqual(value, other) {
			return false
		}
	}

	return true
}

// valuesEqual is structural equality of two parameter values.
func valuesEqual(a, b any) bool {
	return cmp.Equal(a, b, equalOpts)
}

// without returns a copy of task minus every name present in drop.
func without(task Params, drop Params) Params {
	out := make(Params, 0, len(task))

	for _, param := range task {
		if drop.Has(param.Name) {
			continue
		}

		out = append(out, param)
	}

	return out
}
