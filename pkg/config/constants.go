package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "STRANDLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STRANDLY_DB_DSN"
	EnvDBHost = "STRANDLY_DB_HOST"
	EnvDBUser = "STRANDLY_DB_USER"
	EnvDBName = "STRANDLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
