package bean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqerrors "github.com/chosen1st/sqoop/errors"
)

func TestSerializer_GetFormat(t *testing.T) {
	s := NewSerializer()
	assert.Equal(t, "json", s.GetFormat())
}

func TestSerializer_IncludeSensitive(t *testing.T) {
	s := NewSerializer()
	assert.False(t, s.IncludeSensitive())

	s.SetIncludeSensitive(true)
	assert.True(t, s.IncludeSensitive())
}

func TestSerializer_RoundTrip(t *testing.T) {
	s := NewSerializer()
	s.SetIncludeSensitive(true)

	created := time.UnixMilli(1600000000000)
	job := fillAll(createJob("jdbc", "serialized", 11, created, created))

	data, err := s.Serialize(job)
	require.NoError(t, err)

	jobs, err := s.Deserialize(data)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job, jobs[0])
}

func TestSerializer_DeserializeWithSchemaSource(t *testing.T) {
	s := NewSerializer()
	job := createJob("jdbc", "serialized", 11, time.UnixMilli(0), time.UnixMilli(0))

	data, err := s.Serialize(job)
	require.NoError(t, err)

	s.SetSchemaSource(stubSchemas{"from_jdbc/FROM": nil})
	_, err = s.Deserialize(data)
	require.Error(t, err)

	var schemaErr *sqerrors.SchemaMismatchError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestSerializer_Errors(t *testing.T) {
	s := NewSerializer()

	_, err := s.Deserialize([]byte(`{"jobs": [`))
	var serErr *sqerrors.SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, "json", serErr.Format)
	var parseErr *sqerrors.ParseError
	assert.ErrorAs(t, err, &parseErr)

	_, err = s.Deserialize([]byte(`{"jobs": [{"id": 1}]}`))
	require.ErrorAs(t, err, &serErr)
	var missingErr *sqerrors.MissingFieldError
	assert.ErrorAs(t, err, &missingErr)

	_, err = s.Serialize(createJob("x", "", 1, time.UnixMilli(0), time.UnixMilli(0)))
	assert.ErrorAs(t, err, &serErr)
}
