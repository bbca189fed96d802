package util

import (
	"testing"
)

func TestParseEnvList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "key1", []string{"key1"}},
		{"several", "key1,key2,key3", []string{"key1", "key2", "key3"}},
		{"spaces", "key1, key2 , key3", []string{"key1", "key2", "key3"}},
		{"empty entry", "key1,,key2", []string{"key1", "key2"}},
		{"trailing comma", "key1,key2,", []string{"key1", "key2"}},
		{"blank entries", "  ,  ,  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseEnvList(tt.input)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
				return
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d entries, got %d", len(tt.expected), len(result))
			}
			for i, expected := range tt.expected {
				if result[i] != expected {
					t.Errorf("index %d: expected %q, got %q", i, expected, result[i])
				}
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name, input, replacement, expected string
		prefixLen, suffixLen               int
	}{
		{"short string untouched", "short", "...", "short", 3, 3},
		{"long string truncated", "1234567890", "...", "123...890", 3, 3},
		{"suffix only", "1234567890", "...", "...7890", 0, 4},
		{"prefix only", "1234567890", "...", "1234...", 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.prefixLen, tt.suffixLen, tt.replacement); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("short"); got != "***" {
		t.Errorf("MaskSecret(short) = %q", got)
	}
	if got := MaskSecret("sk-admin-0123456789"); got != "sk-a***6789" {
		t.Errorf("MaskSecret(long) = %q", got)
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	tests := []struct {
		name, key, setValue, defaultValue, expected string
		setEnv                                      bool
	}{
		{"default", "MODELPICKER_TEST_UNSET", "", "fallback", "fallback", false},
		{"from env", "MODELPICKER_TEST_SET", "actual", "fallback", "actual", true},
		{"empty env uses default", "MODELPICKER_TEST_EMPTY", "", "fallback", "fallback", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.setValue)
			}
			if got := GetEnvWithDefault(tt.key, tt.defaultValue); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   int
		wantOK bool
	}{
		{"unset", "", 120, true},
		{"valid", "30", 30, true},
		{"padded", " 45 ", 45, true},
		{"malformed", "fast", 120, false},
		{"zero", "0", 120, false},
		{"negative", "-5", 120, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MODELPICKER_TEST_INT", tt.value)
			got, ok := GetEnvInt("MODELPICKER_TEST_INT", 120)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("GetEnvInt() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := MarshalJSON(map[string][]string{"fallbacks": {}})
	if err != nil {
		t.Fatalf("MarshalJSON error = %v", err)
	}
	if string(data) != `{"fallbacks":[]}` {
		t.Errorf("unexpected encoding %s", data)
	}
	var decoded map[string][]string
	if err := UnmarshalJSON(data, &decoded); err != nil {
		t.Fatalf("UnmarshalJSON error = %v", err)
	}
	if decoded["fallbacks"] == nil || len(decoded["fallbacks"]) != 0 {
		t.Errorf("unexpected decoded value %v", decoded)
	}
}
