package questionbank

// fileSchema is the JSON schema every bank file must satisfy before it is
// converted into typed structs.
var fileSchema = map[string]any{
	"type":     "object",
	"required": []any{"topics"},
	"properties": map[string]any{
		"topics": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "questions"},
				"properties": map[string]any{
					"name":   map[string]any{"type": "string", "minLength": 1},
					"weight": map[string]any{"type": "number", "minimum": 0},
					"questions": map[string]any{
						"type":  "array",
						"items": questionSchema,
					},
				},
				"additionalProperties": false,
			},
		},
		"frameworks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "topics"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string", "minLength": 1},
					"topics": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"additionalProperties": false,
			},
		},
		"difficulties": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name"},
				"properties": map[string]any{
					"name":        difficultySchema,
					"description": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
		"flashcards": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"term", "definition"},
				"properties": map[string]any{
					"term":       map[string]any{"type": "string", "minLength": 1},
					"definition": map[string]any{"type": "string"},
					"topic":      map[string]any{"type": "string"},
					"difficulty": difficultySchema,
				},
				"additionalProperties": false,
			},
		},
	},
	"additionalProperties": false,
}

var questionSchema = map[string]any{
	"type":     "object",
	"required": []any{"question", "options", "correct"},
	"properties": map[string]any{
		"question": map[string]any{"type": "string", "minLength": 1},
		"options": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": OptionCount,
			"maxItems": OptionCount,
		},
		"correct": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "integer", "minimum": 0, "maximum": OptionCount - 1},
				map[string]any{"type": "string", "pattern": "^[A-Da-d]"},
			},
		},
		"explanation": map[string]any{"type": "string"},
		"difficulty":  difficultySchema,
		"framework":   map[string]any{"type": "string"},
	},
	"additionalProperties": false,
}

var difficultySchema = map[string]any{
	"type": "string",
	"enum": []any{"Normal", "Intermediate", "Advanced", "PhD", "God Level"},
}
