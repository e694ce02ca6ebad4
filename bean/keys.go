package bean

// Wire format version written by Extract
const CurrentVersion = 1

// Envelope keys
const (
	KeyVersion = "version"
	KeyJobs    = "jobs"
)

// Job keys
const (
	KeyID                = "id"
	KeyName              = "name"
	KeyEnabled           = "enabled"
	KeyCreationDate      = "creation-date"
	KeyUpdateDate        = "update-date"
	KeyFromLinkName      = "from-link-name"
	KeyToLinkName        = "to-link-name"
	KeyFromConnectorName = "from-connector-name"
	KeyToConnectorName   = "to-connector-name"
	KeyFromConfig        = "from-config"
	KeyToConfig          = "to-config"
)

// Config and input keys
const (
	KeyInputs    = "inputs"
	KeyType      = "type"
	KeyValue     = "value"
	KeySensitive = "sensitive"
	KeyValues    = "values"
)
