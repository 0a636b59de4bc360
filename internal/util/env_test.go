package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"unset uses default true", "", true, true},
		{"unset uses default false", "", false, false},
		{"true", "true", false, true},
		{"TRUE", "TRUE", false, true},
		{"one", "1", false, true},
		{"yes", "yes", false, true},
		{"on", "on", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"no", "no", true, false},
		{"off", "off", true, false},
		{"padded", "	true ", false, true},
		{"garbage uses default", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COACHPIPE_TEST_BOOL", tt.value)
			if got := ParseBoolEnv("COACHPIPE_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("COACHPIPE_TEST_STR", "")
	if got := GetEnvOrDefault("COACHPIPE_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("GetEnvOrDefault() = %q, want fallback", got)
	}
	t.Setenv("COACHPIPE_TEST_STR", "value")
	if got := GetEnvOrDefault("COACHPIPE_TEST_STR", "fallback"); got != "value" {
		t.Errorf("GetEnvOrDefault() = %q, want value", got)
	}
}
