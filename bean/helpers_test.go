package bean

import (
	"time"

	"github.com/chosen1st/sqoop/model"
)

func ptr[T any](v T) *T { return &v }

// sideConfig builds a config section exercising every input type. The first
// input is always the plain string slot the scenarios fill in.
func sideConfig(prefix string) model.Config {
	name := prefix + "JobConfig"
	return model.NewConfig(name,
		model.NewStringInput(name+".partitionColumn", false, nil),
		model.NewMapInput(name+".properties", false, nil),
		model.NewEnumInput(name+".mode", false, []string{"FULL", "INCREMENTAL"}, nil),
		model.NewIntegerInput(name+".partitions", false, nil),
		model.NewLongInput(name+".lastValue", false, nil),
		model.NewBooleanInput(name+".allowNulls", false, nil),
		model.NewListInput(name+".columns", false, nil),
		model.NewDateTimeInput(name+".since", false, nil),
		model.NewStringInput(name+".password", true, nil),
	)
}

func createJob(connector, name string, id int64, created, updated time.Time) model.Job {
	j := model.NewJob(name,
		model.NewJobConfig(model.DirectionFrom, "fromLinkName", "from_"+connector, sideConfig("from")),
		model.NewJobConfig(model.DirectionTo, "toLinkName", "to_"+connector, sideConfig("to")),
	)
	j.PersistenceID = id
	j.Enabled = false
	j.CreationDate = created
	j.LastUpdateDate = updated
	return j
}

// fillAll sets a value on every input of the from side
func fillAll(j model.Job) model.Job {
	values := map[string]interface{}{
		"fromJobConfig.partitionColumn": "id",
		"fromJobConfig.properties":      map[string]string{"fetchSize": "1000", "schema": "public"},
		"fromJobConfig.mode":            "INCREMENTAL",
		"fromJobConfig.partitions":      int32(-12),
		"fromJobConfig.lastValue":       int64(9007199254740993),
		"fromJobConfig.allowNulls":      true,
		"fromJobConfig.columns":         []string{"id", "name", "created_at"},
		"fromJobConfig.since":           time.UnixMilli(1700000000123),
		"fromJobConfig.password":        "s3cr3t",
	}

	var err error
	for in, v := range values {
		j.From, err = j.From.WithValue("fromJobConfig", in, v)
		if err != nil {
			panic(err)
		}
	}
	return j
}

// stubSchemas serves skeletons for a fixed set of connectors
type stubSchemas map[string][]model.Config

func (s stubSchemas) Skeleton(connector string, direction model.Direction) ([]model.Config, bool) {
	configs, ok := s[connector+"/"+string(direction)]
	return configs, ok
}
