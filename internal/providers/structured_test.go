package providers

import (
	"encoding/json"
	"testing"
)

func TestParseStructuredJSON(t *testing.T) {
	t.Run("bare JSON", func(t *testing.T) {
		got, err := ParseStructuredJSON(`{"name":"Soup"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertField(t, got, "name", "Soup")
	})

	t.Run("fenced JSON", func(t *testing.T) {
		got, err := ParseStructuredJSON("```json\n{\"name\":\"Soup\"}\n```")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertField(t, got, "name", "Soup")
	})

	t.Run("JSON wrapped in prose", func(t *testing.T) {
		got, err := ParseStructuredJSON("Here is the recipe:\n{\"name\":\"Soup\"}\nDone.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertField(t, got, "name", "Soup")
	})

	t.Run("empty input fails", func(t *testing.T) {
		if _, err := ParseStructuredJSON("   "); err == nil {
			t.Error("expected error for empty input")
		}
	})

	t.Run("non-JSON fails", func(t *testing.T) {
		if _, err := ParseStructuredJSON("not json at all"); err == nil {
			t.Error("expected error for non-JSON input")
		}
	})
}

func TestValidateAgainstSchema(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string", "minLength": 1}}
	}`)

	t.Run("conforming document passes", func(t *testing.T) {
		if err := ValidateAgainstSchema(json.RawMessage(`{"name":"Soup"}`), schema); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing required field fails", func(t *testing.T) {
		if err := ValidateAgainstSchema(json.RawMessage(`{}`), schema); err == nil {
			t.Error("expected schema violation")
		}
	})
}

func assertField(t *testing.T, doc json.RawMessage, key, want string) {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if m[key] != want {
		t.Errorf("%s = %v, want %v", key, m[key], want)
	}
}
