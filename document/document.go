// Package document parses and serializes the generic JSON documents the job
// transcoder reads and writes.
//
// A Document is the decoded form of a JSON object: nested objects decode to
// map[string]interface{}, arrays to []interface{} and numbers to json.Number
// so that 64-bit identifiers and timestamps keep their precision.
package document

import (
	"bytes"
	"errors"
	"io"

	"github.com/goccy/go-json"

	sqerrors "github.com/chosen1st/sqoop/errors"
)

// Document is a decoded JSON object
type Document map[string]interface{}

// Parse converts JSON text into a Document
func Parse(text string) (Document, error) {
	return ParseBytes([]byte(text))
}

// ParseBytes converts JSON bytes into a Document. The root value must be an
// object; anything else is reported as a ParseError.
func ParseBytes(data []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var root interface{}
	if err := decoder.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, sqerrors.NewParseError(io.ErrUnexpectedEOF)
		}
		return nil, sqerrors.NewParseError(err)
	}

	var trailing interface{}
	if err := decoder.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, sqerrors.NewParseError(errors.New("unexpected data after top-level value"))
	}

	obj, ok := root.(map[string]interface{})
	if !ok {
		return nil, sqerrors.NewParseError(errors.New("top-level value is not an object"))
	}
	return Document(obj), nil
}

// ToText serializes a Document to JSON text
func ToText(doc Document) (string, error) {
	data, err := Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Marshal serializes a Document to JSON bytes
func Marshal(doc Document) ([]byte, error) {
	if doc == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(map[string]interface{}(doc))
	if err != nil {
		return nil, sqerrors.NewSerializationError("json", err)
	}
	return data, nil
}
