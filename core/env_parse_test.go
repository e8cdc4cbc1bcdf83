package core

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	const key = "TEXGEN_TEST_STRING"

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"set", "custom", "custom"},
		{"trimmed", "  padded  ", "padded"},
		{"blank", "   ", "default"},
		{"empty", "", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.value)
			if got := GetEnvOrDefault(key, "default"); got != tt.want {
				t.Errorf("GetEnvOrDefault() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIntEnv(t *testing.T) {
	const key = "TEXGEN_TEST_INT"

	tests := []struct {
		value string
		want  int
	}{
		{"42", 42},
		{"-10", -10},
		{"abc", 7},
		{"3.5", 7},
		{"", 7},
	}

	for _, tt := range tests {
		t.Setenv(key, tt.value)
		if got := ParseIntEnv(key, 7); got != tt.want {
			t.Errorf("ParseIntEnv(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseFloat64Env(t *testing.T) {
	const key = "TEXGEN_TEST_FLOAT"

	tests := []struct {
		value string
		want  float64
	}{
		{"6.8", 6.8},
		{"7", 7},
		{"nope", 1.5},
		{"", 1.5},
	}

	for _, tt := range tests {
		t.Setenv(key, tt.value)
		if got := ParseFloat64Env(key, 1.5); got != tt.want {
			t.Errorf("ParseFloat64Env(%q) = %g, want %g", tt.value, got, tt.want)
		}
	}
}

func TestParseBoolEnv(t *testing.T) {
	const key = "TEXGEN_TEST_BOOL"

	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"Off", true, false},
		{"maybe", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Setenv(key, tt.value)
		if got := ParseBoolEnv(key, tt.def); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestParseDurationEnv(t *testing.T) {
	const key = "TEXGEN_TEST_DURATION"

	tests := []struct {
		value string
		want  time.Duration
	}{
		{"90s", 90 * time.Second},
		{"2m", 2 * time.Minute},
		{"30", 30 * time.Second},
		{"soon", time.Minute},
		{"", time.Minute},
	}

	for _, tt := range tests {
		t.Setenv(key, tt.value)
		if got := ParseDurationEnv(key, time.Minute); got != tt.want {
			t.Errorf("ParseDurationEnv(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
