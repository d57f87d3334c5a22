package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "FIELDMARK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "FIELDMARK_DB_DSN"
	EnvDBHost = "FIELDMARK_DB_HOST"
	EnvDBUser = "FIELDMARK_DB_USER"
	EnvDBName = "FIELDMARK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
