// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		envValue string
		envSet   bool
		want     string
	}{
		{name: "environment variable set", key: "TEST_STRING", envValue: "from-env", envSet: true, want: "from-env"},
		{name: "environment variable not set", key: "TEST_STRING_UNSET", want: "default"},
		{name: "environment variable empty string", key: "TEST_STRING_EMPTY", envSet: true, want: "default"},
		{name: "sensitive variable", key: "TEST_PASSWORD", envValue: "secret123", envSet: true, want: "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, ParseString(tt.key, "default"))
		})
	}
}

func TestParseInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")

	assert.Equal(t, 42, ParseInt("TEST_INT", 7))
	assert.Equal(t, 7, ParseInt("TEST_INT_BAD", 7))
	assert.Equal(t, 7, ParseInt("TEST_INT_UNSET", 7))
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "45s")
	t.Setenv("TEST_DUR_BAD", "45")

	assert.Equal(t, 45*time.Second, ParseDuration("TEST_DUR", time.Second))
	assert.Equal(t, time.Second, ParseDuration("TEST_DUR_BAD", time.Second))
}

func TestParseBool(t *testing.T) {
	for value, want := range map[string]bool{
		"true": true, "TRUE": true, "1": true, "yes": true,
		"false": false, "0": false, "No": false,
	} {
		t.Setenv("TEST_BOOL", value)
		assert.Equal(t, want, ParseBool("TEST_BOOL", !want), "value=%q", value)
	}

	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, ParseBool("TEST_BOOL", true))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, ParseFloat("TEST_FLOAT", 1), 1e-9)

	t.Setenv("TEST_FLOAT", "quarter")
	assert.InDelta(t, 1.0, ParseFloat("TEST_FLOAT", 1), 1e-9)
}

func TestParseList(t *testing.T) {
	t.Setenv("TEST_LIST", " https://a.example , ,https://b.example ")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, ParseList("TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, ParseList("TEST_LIST_UNSET", []string{"x"}))
}
