package extraction

// ApplyDefaults fills missing fields in record with defaults from
// schema. The schema mirrors the expected output shape: for every key
// present in schema and absent in record the default is inserted; when
// both sides hold nested maps the merge recurses; otherwise record's
// value wins. Neither input is mutated.
//
// The operation is idempotent: applying the same schema twice yields
// the same result as applying it once.
func ApplyDefaults(record, schema map[string]any) map[string]any {
	result := make(map[string]any, len(schema)+len(record))
	for k, v := range schema {
		result[k] = deepCopy(v)
	}
	mergeInto(result, record)
	return result
}

func mergeInto(base map[string]any, updates map[string]any) {
	for k, v := range updates {
		baseMap, baseOK := base[k].(map[string]any)
		updMap, updOK := v.(map[string]any)
		if baseOK && updOK {
			mergeInto(baseMap, updMap)
			continue
		}
		base[k] = deepCopy(v)
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
