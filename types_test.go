package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsLookupUsesLastOccurrence(t *testing.T) {
	p := Params{{Name: "a", Value: 1}, {Name: "b", Value: 2}, {Name: "a", Value: 3}}

	v, ok := p.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = p.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{"a": 3, "b": 2}, p.Map())
}

func TestArgsTaskTakesPrecedence(t *testing.T) {
	args := Args{
		Common: Params{{Name: "lr", Value: 0.1}, {Name: "model", Value: "vit"}},
		Task:   Params{{Name: "lr", Value: 0.01}, {Name: "epochs", Value: 3}},
	}

	lr, ok := args.Float("lr")
	assert.True(t, ok)
	assert.Equal(t, 0.01, lr)

	epochs, ok := args.Float("epochs")
	assert.True(t, ok)
	assert.Equal(t, 3.0, epochs)

	_, ok = args.Float("model")
	assert.False(t, ok)

	_, ok = args.String("epochs")
	assert.False(t, ok)

	assert.Len(t, args.All(), 4)
	assert.Equal(t, "epochs", args.All()[3].Name)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "grid", Grid.String())
	assert.Equal(t, "random", Random.String())

	assert.Equal(t, Random, Config{Iterations: 3}.Mode())
	assert.Equal(t, Grid, Config{}.Mode())
}

func TestRangeBounds(t *testing.T) {
	r := Uniform(5, 1)

	assert.Equal(t, 1.0, r.Min())
	assert.Equal(t, 5.0, r.Max())
}

func TestArgsFloatConvertsEveryNumericType(t *testing.T) {
	args := Args{Task: Params{
		{Name: "i8", Value: int8(-8)},
		{Name: "i16", Value: int16(16)},
		{Name: "u8", Value: uint8(8)},
		{Name: "u16", Value: uint16(160)},
		{Name: "f32", Value: float32(0.5)},
	}}

	want := map[string]float64{"i8": -8, "i16": 16, "u8": 8, "u16": 160, "f32": 0.5}

	for name, value := range want {
		got, ok := args.Float(name)
		assert.True(t, ok, name)
		assert.Equal(t, value, got, name)
	}
}
