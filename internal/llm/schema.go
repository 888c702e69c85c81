package llm

// billSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Every field is nullable; the prompt instructs the model to emit null for
// anything it cannot read off the document.
func billSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"biller_name":         nullableString(),
			"biller_confidence":   confidenceProp(),
			"biller_evidence":     nullableString(),
			"amount":              amountProp(),
			"amount_confidence":   confidenceProp(),
			"amount_evidence":     nullableString(),
			"due_date":            nullableDate(),
			"due_date_confidence": confidenceProp(),
			"due_date_evidence":   nullableString(),
			"currency":            nullableString(),
		},
	}
}

func receiptSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"store_name":        nullableString(),
			"store_confidence":  confidenceProp(),
			"store_evidence":    nullableString(),
			"amount":            amountProp(),
			"amount_confidence": confidenceProp(),
			"amount_evidence":   nullableString(),
			"receipt_date":      nullableDate(),
			"date_confidence":   confidenceProp(),
			"date_evidence":     nullableString(),
			"category":          nullableString(),
			"currency":          nullableString(),
			"items": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"price":    amountProp(),
						"quantity": map[string]any{"type": "integer", "minimum": 0},
					},
				},
			},
		},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableDate() map[string]any {
	return map[string]any{
		"type":    []string{"string", "null"},
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}

func amountProp() map[string]any {
	return map[string]any{
		"type":    []string{"number", "null"},
		"minimum": 0.0,
	}
}

func confidenceProp() map[string]any {
	return map[string]any{
		"type":    []string{"number", "null"},
		"minimum": 0.0,
		"maximum": 1.0,
	}
}
