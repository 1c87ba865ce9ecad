package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrConfigNotObject is returned when the configuration root is not an object.
var ErrConfigNotObject = errors.New("gateway configuration is not a JSON object")

// FlattenConfigKeys lists every key path of a nested configuration in
// document order, parents before children: {"a":{"b":1}} yields a, a.b.
// Arrays are leaves.
func FlattenConfigKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrConfigNotObject
	}

	keys := []string{}
	if err := walkObject(dec, "", &keys); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return keys, nil
}

// walkObject consumes an object body after its opening brace.
func walkObject(dec *json.Decoder, prefix string, keys *[]string) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		path := prefix + key
		*keys = append(*keys, path)

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{':
				if err := walkObject(dec, path+".", keys); err != nil {
					return err
				}
			case '[':
				if err := skipNested(dec); err != nil {
					return err
				}
			}
		}
	}
	_, err := dec.Token() // closing brace
	return err
}

// skipNested consumes values until the delimiter already opened is closed.
func skipNested(dec *json.Decoder) error {
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			default:
				depth--
			}
		}
	}
	return nil
}
