package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsMissingFields(t *testing.T) {
	schema := map[string]any{
		"is_valid":   false,
		"issues":     []any{},
		"summary":    "",
		"counts":     map[string]any{"work": float64(0), "education": float64(0)},
		"confidence": float64(0),
	}
	record := map[string]any{
		"is_valid": true,
		"counts":   map[string]any{"work": float64(3)},
	}

	result := ApplyDefaults(record, schema)

	assert.Equal(t, true, result["is_valid"])
	assert.Equal(t, []any{}, result["issues"])
	assert.Equal(t, "", result["summary"])
	assert.Equal(t, float64(3), result["counts"].(map[string]any)["work"])
	assert.Equal(t, float64(0), result["counts"].(map[string]any)["education"])
}

func TestApplyDefaults_RecordValueWinsOnTypeMismatch(t *testing.T) {
	schema := map[string]any{"field": map[string]any{"nested": ""}}
	record := map[string]any{"field": "a plain string"}

	result := ApplyDefaults(record, schema)
	assert.Equal(t, "a plain string", result["field"])
}

func TestApplyDefaults_KeepsExtraRecordFields(t *testing.T) {
	schema := map[string]any{"expected": ""}
	record := map[string]any{"expected": "x", "surprise": float64(7)}

	result := ApplyDefaults(record, schema)
	assert.Equal(t, float64(7), result["surprise"])
}

func TestApplyDefaults_DoesNotMutateInputs(t *testing.T) {
	schema := map[string]any{"nested": map[string]any{"a": "", "b": ""}}
	record := map[string]any{"nested": map[string]any{"a": "set"}}

	_ = ApplyDefaults(record, schema)

	assert.Equal(t, map[string]any{"a": "", "b": ""}, schema["nested"])
	assert.Equal(t, map[string]any{"a": "set"}, record["nested"])
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	schema := map[string]any{
		"a": "",
		"b": map[string]any{"c": []any{}, "d": float64(0)},
	}
	record := map[string]any{
		"a": "value",
		"b": map[string]any{"c": []any{"x"}},
		"e": true,
	}

	once := ApplyDefaults(record, schema)
	twice := ApplyDefaults(once, schema)
	assert.Equal(t, once, twice)
}

func TestApplyDefaults_EmptyRecord(t *testing.T) {
	schema := map[string]any{"list": []any{}, "obj": map[string]any{"k": ""}}
	result := ApplyDefaults(map[string]any{}, schema)
	assert.Equal(t, schema, result)
}
