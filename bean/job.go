package bean

import (
	"fmt"
	"time"

	"github.com/chosen1st/sqoop/document"
	sqerrors "github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

// ExtractJob converts a job into its wire object
func ExtractJob(job model.Job, includeSensitive bool) (map[string]interface{}, error) {
	if job.Name == "" {
		return nil, fmt.Errorf("job %d: %w", job.PersistenceID, sqerrors.ErrEmptyName)
	}

	from, err := ExtractJobConfig(job.From, includeSensitive)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.Name, err)
	}
	to, err := ExtractJobConfig(job.To, includeSensitive)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.Name, err)
	}

	return map[string]interface{}{
		KeyID:                job.PersistenceID,
		KeyName:              job.Name,
		KeyEnabled:           job.Enabled,
		KeyCreationDate:      job.CreationDate.UnixMilli(),
		KeyUpdateDate:        job.LastUpdateDate.UnixMilli(),
		KeyFromLinkName:      job.From.LinkName,
		KeyToLinkName:        job.To.LinkName,
		KeyFromConnectorName: job.From.ConnectorName,
		KeyToConnectorName:   job.To.ConnectorName,
		KeyFromConfig:        from,
		KeyToConfig:          to,
	}, nil
}

// RestoreJob rebuilds a job from its wire object. The id and name are
// required; every other field falls back to its zero value when absent, with
// dates defaulting to the Unix epoch. When src knows the connector of a side,
// that side's configs are bound to the connector's skeleton.
func RestoreJob(obj map[string]interface{}, src SchemaSource) (model.Job, error) {
	rawID, ok := obj[KeyID]
	if !ok || rawID == nil {
		return model.Job{}, sqerrors.NewMissingFieldError("job", KeyID)
	}
	id, ok := document.Int64(rawID)
	if !ok {
		return model.Job{}, sqerrors.NewFormatError(KeyID, "integer", rawID)
	}

	name, err := requiredString(obj, "job", KeyName)
	if err != nil {
		return model.Job{}, err
	}
	if name == "" {
		return model.Job{}, sqerrors.NewFormatError(KeyName, "non-empty string", name)
	}

	job := model.Job{
		PersistenceID: id,
		Name:          name,
		From:          model.JobConfig{Direction: model.DirectionFrom},
		To:            model.JobConfig{Direction: model.DirectionTo},
	}

	if job.Enabled, err = optionalBool(obj, KeyEnabled); err != nil {
		return model.Job{}, err
	}
	if job.CreationDate, err = optionalMillis(obj, KeyCreationDate); err != nil {
		return model.Job{}, err
	}
	if job.LastUpdateDate, err = optionalMillis(obj, KeyUpdateDate); err != nil {
		return model.Job{}, err
	}
	if job.From.LinkName, err = optionalString(obj, KeyFromLinkName); err != nil {
		return model.Job{}, err
	}
	if job.To.LinkName, err = optionalString(obj, KeyToLinkName); err != nil {
		return model.Job{}, err
	}
	if job.From.ConnectorName, err = optionalString(obj, KeyFromConnectorName); err != nil {
		return model.Job{}, err
	}
	if job.To.ConnectorName, err = optionalString(obj, KeyToConnectorName); err != nil {
		return model.Job{}, err
	}

	if job.From.Configs, err = restoreSide(obj, KeyFromConfig, &job.From, src); err != nil {
		return model.Job{}, fmt.Errorf("job %s: %w", name, err)
	}
	if job.To.Configs, err = restoreSide(obj, KeyToConfig, &job.To, src); err != nil {
		return model.Job{}, fmt.Errorf("job %s: %w", name, err)
	}
	return job, nil
}

func restoreSide(obj map[string]interface{}, key string, jc *model.JobConfig, src SchemaSource) ([]model.Config, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var skeleton []model.Config
	if src != nil && jc.ConnectorName != "" {
		if configs, known := src.Skeleton(jc.ConnectorName, jc.Direction); known {
			skeleton = configs
			if skeleton == nil {
				skeleton = []model.Config{}
			}
		}
	}
	return RestoreJobConfig(key, raw, skeleton)
}

func optionalBool(obj map[string]interface{}, key string) (bool, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return false, nil
	}
	b, ok := document.Bool(raw)
	if !ok {
		return false, sqerrors.NewFormatError(key, "boolean", raw)
	}
	return b, nil
}

func optionalString(obj map[string]interface{}, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := document.String(raw)
	if !ok {
		return "", sqerrors.NewFormatError(key, "string", raw)
	}
	return s, nil
}

func optionalMillis(obj map[string]interface{}, key string) (time.Time, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return time.UnixMilli(0), nil
	}
	ms, ok := document.Int64(raw)
	if !ok {
		return time.Time{}, sqerrors.NewFormatError(key, "epoch milliseconds", raw)
	}
	return time.UnixMilli(ms), nil
}
