package utils

import (
	"reflect"
	"testing"

	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
)

func TestGetEnv_DefaultWhenUnset(t *testing.T) {
	if got := GetEnv("MEDICARE_TEST_DEFINITELY_MISSING", "fallback", logger.NewNop()); got != "fallback" {
		t.Errorf("GetEnv = %q, want fallback", got)
	}
}

func TestGetEnv_ReturnsValue(t *testing.T) {
	t.Setenv("MEDICARE_TEST_STR", "value")
	if got := GetEnv("MEDICARE_TEST_STR", "fallback", nil); got != "value" {
		t.Errorf("GetEnv = %q, want value", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("MEDICARE_TEST_INT", " 42 ")
	if got := GetEnvAsInt("MEDICARE_TEST_INT", 7, logger.NewNop()); got != 42 {
		t.Errorf("GetEnvAsInt = %d, want 42", got)
	}
	t.Setenv("MEDICARE_TEST_INT", "nope")
	if got := GetEnvAsInt("MEDICARE_TEST_INT", 7, logger.NewNop()); got != 7 {
		t.Errorf("GetEnvAsInt with bad value = %d, want 7", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("MEDICARE_TEST_BOOL", "true")
	if !GetEnvAsBool("MEDICARE_TEST_BOOL", false, nil) {
		t.Error("GetEnvAsBool = false, want true")
	}
	t.Setenv("MEDICARE_TEST_BOOL", "maybe")
	if !GetEnvAsBool("MEDICARE_TEST_BOOL", true, nil) {
		t.Error("GetEnvAsBool with bad value should return default")
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("MEDICARE_TEST_LIST", "a, b,,c ")
	got := GetEnvAsList("MEDICARE_TEST_LIST", nil, nil)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetEnvAsList = %v, want %v", got, want)
	}
}
