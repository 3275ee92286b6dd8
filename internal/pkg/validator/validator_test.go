package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-02-29", "2023-12-31"}
	invalid := []string{"2023-02-29", "2024/01/01", "15-03-2024", ""}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	m, ok := IsValidMonth("2024-02")
	require.True(t, ok)
	assert.Equal(t, 2024, m.Year())

	_, ok = IsValidMonth("2024-13")
	assert.False(t, ok)
}

func TestIsInSlice(t *testing.T) {
	assert.True(t, IsInSlice("b", []string{"a", "b"}))
	assert.False(t, IsInSlice("c", []string{"a", "b"}))
	assert.False(t, IsInSlice("a", nil))
}

type sample struct {
	Status   string  `json:"status" validate:"required,oneof=Present Absent"`
	Latitude float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Note     string  `json:"note,omitempty" validate:"max=5"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(sample{Status: "Present", Latitude: 10}))
	})

	t.Run("field errors keyed by json name", func(t *testing.T) {
		err := Struct(sample{Status: "Late", Latitude: 91, Note: "too long"})
		require.Error(t, err)

		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)

		m := errs.ToMap()
		assert.Contains(t, m, "status")
		assert.Contains(t, m, "latitude")
		assert.Equal(t, "note must not exceed 5 characters", m["note"])
	})

	t.Run("required", func(t *testing.T) {
		err := Struct(sample{})
		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, "status is required", errs.ToMap()["status"])
	})
}
