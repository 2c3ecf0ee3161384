package models

import "fmt"

// Country identifies one of the regional source servers.
type Country string

const (
	Chile    Country = "CHILE"
	Colombia Country = "COLOMBIA"
	Ecuador  Country = "ECUADOR"
	Peru     Country = "PERU"
)

// AllCountries lists every supported country in pipeline processing order.
var AllCountries = []Country{Chile, Colombia, Ecuador, Peru}

// Code returns the two-letter country code used in equivalence-table joins.
func (c Country) Code() string {
	switch c {
	case Chile:
		return "CL"
	case Colombia:
		return "CO"
	case Ecuador:
		return "EC"
	case Peru:
		return "PE"
	}
	return "CL"
}

// ParseCountry validates a country name from configuration or CLI input.
func ParseCountry(name string) (Country, error) {
	for _, c := range AllCountries {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown country %q", name)
}

type Config struct {
	Countries []string           `yaml:"countries"`
	Sources   map[string]Source  `yaml:"sources"`
	Snowflake Snowflake          `yaml:"snowflake"`
	Staging   Staging            `yaml:"staging"`
	Load      Load               `yaml:"load"`
}

// Source holds the SQL Server connection settings for one country.
type Source struct {
	Server   string `yaml:"server"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Snowflake struct {
	Account   string `yaml:"account"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
}

// Staging configures the shared CSV staging area. BaseDir is the primary
// location; FallbackDir is used when BaseDir does not exist (e.g. the synced
// drive is not mounted). The SNOWLIFT_BASE_DIR environment variable overrides
// both.
type Staging struct {
	BaseDir     string `yaml:"base_dir"`
	FallbackDir string `yaml:"fallback_dir"`
}

// Load holds the recognized load options. Every field must resolve to a
// concrete value before the pipeline starts.
type Load struct {
	BatchSize           int  `yaml:"batch_size"`
	MaxRetries          int  `yaml:"max_retries"`
	TruncateBeforeLoad  bool `yaml:"truncate_before_load"`
	ConnectTimeoutSec   int  `yaml:"connect_timeout_seconds"`
	StatementTimeoutSec int  `yaml:"statement_timeout_seconds"`
}
