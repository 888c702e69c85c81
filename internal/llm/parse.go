package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON carves the JSON object out of a model response that may be
// wrapped in markdown code fences or surrounded by prose.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("invalid JSON object in response")
	}

	return text[startIdx : endIdx+1], nil
}

func decodeBill(text string) (*BillResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	if err := validateBillJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("validating bill response: %w", err)
	}
	var res BillResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("unmarshaling bill response: %w", err)
	}
	return &res, nil
}

func decodeReceipt(text string) (*ReceiptResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	if err := validateReceiptJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("validating receipt response: %w", err)
	}
	var res ReceiptResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("unmarshaling receipt response: %w", err)
	}
	return &res, nil
}
