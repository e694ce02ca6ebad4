package bean

import (
	"github.com/chosen1st/sqoop/document"
	sqerrors "github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

// Serializer turns jobs into envelope bytes and back
type Serializer struct {
	includeSensitive bool
	schemas          SchemaSource
}

// NewSerializer creates a serializer that masks sensitive values
func NewSerializer() *Serializer {
	return &Serializer{
		includeSensitive: false,
	}
}

// Serialize encodes jobs as one envelope
func (s *Serializer) Serialize(jobs ...model.Job) ([]byte, error) {
	doc, err := NewJobBean(jobs...).Extract(s.includeSensitive)
	if err != nil {
		return nil, sqerrors.NewSerializationError(s.GetFormat(), err)
	}

	data, err := document.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Deserialize decodes an envelope into its jobs
func (s *Serializer) Deserialize(data []byte) ([]model.Job, error) {
	doc, err := document.ParseBytes(data)
	if err != nil {
		return nil, sqerrors.NewSerializationError(s.GetFormat(), err)
	}

	b := New(WithSchemaSource(s.schemas))
	if err := b.Restore(doc); err != nil {
		return nil, sqerrors.NewSerializationError(s.GetFormat(), err)
	}
	return b.Jobs(), nil
}

// GetFormat returns the serialization format name
func (s *Serializer) GetFormat() string {
	return "json"
}

// IncludeSensitive returns whether sensitive values are written
func (s *Serializer) IncludeSensitive() bool {
	return s.includeSensitive
}

// SetIncludeSensitive sets whether sensitive values are written
func (s *Serializer) SetIncludeSensitive(include bool) {
	s.includeSensitive = include
}

// SetSchemaSource sets the skeleton source used by Deserialize
func (s *Serializer) SetSchemaSource(src SchemaSource) {
	s.schemas = src
}
