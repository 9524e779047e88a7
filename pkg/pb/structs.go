package pb

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts any JSON-serializable value into a Struct. The value
// must encode as a JSON object.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal to struct: %w", err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("convert to struct: %w", err)
	}
	return s, nil
}

// FromStruct decodes a Struct into v using its JSON tags.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("decode struct: nil message")
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("convert from struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}
