package prereq

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode reads the JSON rendering of a tree back into an Expr.
// Concurrent leaves come back as Course since both render the same way.
func Decode(data []byte) (Expr, error) {
	expr, err := decodeValue(json.RawMessage(data))
	if err != nil {
		return nil, err
	}
	if err := Validate(expr); err != nil {
		return nil, fmt.Errorf("invalid prerequisite tree: %w", err)
	}
	return expr, nil
}

func decodeValue(raw json.RawMessage) (Expr, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		switch s {
		case NoneMarker:
			return None{}, nil
		case WritingCode:
			return Writing{}, nil
		}
		if leaf := NewCourse(s); leaf != nil {
			return leaf, nil
		}
		return nil, fmt.Errorf("blank course code")

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		if len(obj) != 1 {
			return nil, fmt.Errorf("expected a single-key object, got %d keys", len(obj))
		}
		for key, value := range obj {
			switch key {
			case "MPE":
				var score int
				if err := json.Unmarshal(value, &score); err != nil {
					return nil, fmt.Errorf("MPE score: %w", err)
				}
				return MathPlacement{MinScore: score}, nil
			case "AND", "OR":
				children, err := decodeList(value)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				if len(children) < 2 {
					return nil, fmt.Errorf("%s node with %d children", key, len(children))
				}
				if key == "AND" {
					return And{children: children}, nil
				}
				return Or{children: children}, nil
			default:
				return nil, fmt.Errorf("unknown node %q", key)
			}
		}
	}

	return nil, fmt.Errorf("unexpected JSON value %s", raw)
}

func decodeList(raw json.RawMessage) ([]Expr, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	children := make([]Expr, 0, len(items))
	for _, item := range items {
		child, err := decodeValue(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
