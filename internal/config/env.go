package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvFilePathVar         = "ENV_FILE_PATH"
	EnvAirtableToken       = "AIRTABLE_PERSONAL_ACCESS_TOKEN"
	EnvAirtableBaseID      = "AIRTABLE_NETWORK_BASE_ID"
	EnvAirtablePeopleTable = "AIRTABLE_NETWORK_PEOPLE_TABLE_ID"
	EnvAirtableAPIURL      = "AIRTABLE_API_URL"
)

// legacyEnvNames are read when the current name is set nowhere, so .env
// files written for the earlier variable names keep working.
var legacyEnvNames = map[string]string{
	EnvAirtableBaseID:      "AIRTABLE_DANIEL_NETWORK_BASE_ID",
	EnvAirtablePeopleTable: "AIRTABLE_DANIEL_NETWORK_PEOPLE_TABLE_ID",
}

// LookupFunc reads one process environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// MissingEnvVarError means a required variable is set nowhere.
type MissingEnvVarError struct {
	Name string
}

func (e *MissingEnvVarError) Error() string {
	return "Missing environment variable: " + quote(e.Name)
}

// InvalidEnvVarError means a variable is set but its value is unusable.
type InvalidEnvVarError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidEnvVarError) Error() string {
	return fmt.Sprintf("Invalid environment variable: %s = %s", quote(e.Name), quote(e.Value))
}

func (e *InvalidEnvVarError) Unwrap() error {
	return e.Err
}

// quote wraps s in the first quote style that does not occur inside it.
func quote(s string) string {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	case !strings.Contains(s, "'''"):
		return "'''" + s + "'''"
	default:
		return `"""` + s + `"""`
	}
}

// Env is the remote configuration, read once at startup and passed to the
// commands that need it.
type Env struct {
	lookup LookupFunc
	file   map[string]string

	// FilePath is the .env file consulted after the process environment.
	FilePath string
}

// EnvFilePath returns ENV_FILE_PATH, or .env in the working directory.
func EnvFilePath(lookup LookupFunc) string {
	if p, ok := lookup(EnvFilePathVar); ok && p != "" {
		return p
	}
	return filepath.Join(".", ".env")
}

// LoadEnv reads the .env file at envFile. A missing file is treated as
// empty; a file that cannot be parsed is an error.
func LoadEnv(lookup LookupFunc, envFile string) (*Env, error) {
	values, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		values = map[string]string{}
	}
	return &Env{lookup: lookup, file: values, FilePath: envFile}, nil
}

// find looks name up in the process environment, then the env file.
func (e *Env) find(name string) (string, bool) {
	if v, ok := e.lookup(name); ok {
		return v, true
	}
	v, ok := e.file[name]
	return v, ok
}

// get looks key up in the process environment, then the env file, then
// under its legacy name, then falls back to def. coerce turns the raw value
// into T. Errors always name key.
func get[T any](e *Env, key string, def *string, coerce func(string) (T, error)) (T, error) {
	var zero T

	name := key
	raw, ok := e.find(key)
	if legacy, has := legacyEnvNames[key]; !ok && has {
		name = legacy
		raw, ok = e.find(legacy)
	}
	if !ok {
		if def == nil {
			return zero, &MissingEnvVarError{Name: key}
		}
		raw = *def
	}

	v, err := coerce(raw)
	if err != nil {
		return zero, &InvalidEnvVarError{Name: name, Value: raw, Err: err}
	}
	return v, nil
}

func nonEmpty(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", errors.New("value is empty")
	}
	return s, nil
}

func withPrefix(prefix string) func(string) (string, error) {
	return func(s string) (string, error) {
		if !strings.HasPrefix(s, prefix) || len(s) == len(prefix) {
			return "", fmt.Errorf("expected an id starting with %q", prefix)
		}
		return s, nil
	}
}

func absoluteURL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New("expected an absolute http(s) URL")
	}
	return s, nil
}

// AirtableToken returns the personal access token.
func (e *Env) AirtableToken() (string, error) {
	return get(e, EnvAirtableToken, nil, nonEmpty)
}

// AirtableBaseID returns the id of the network base ("app...").
func (e *Env) AirtableBaseID() (string, error) {
	return get(e, EnvAirtableBaseID, nil, withPrefix("app"))
}

// AirtablePeopleTableID returns the id or name of the people table.
func (e *Env) AirtablePeopleTableID() (string, error) {
	return get(e, EnvAirtablePeopleTable, nil, nonEmpty)
}

// AirtableAPIURL returns the API endpoint, or def when unset.
func (e *Env) AirtableAPIURL(def string) (string, error) {
	return get(e, EnvAirtableAPIURL, &def, absoluteURL)
}

// AirtableSettings bundles what the Airtable store needs.
type AirtableSettings struct {
	Token   string
	BaseID  string
	TableID string
	APIURL  string
}

// Airtable reads every Airtable variable, returning the first error.
func (e *Env) Airtable(defaultURL string) (*AirtableSettings, error) {
	token, err := e.AirtableToken()
	if err != nil {
		return nil, err
	}
	base, err := e.AirtableBaseID()
	if err != nil {
		return nil, err
	}
	table, err := e.AirtablePeopleTableID()
	if err != nil {
		return nil, err
	}
	apiURL, err := e.AirtableAPIURL(defaultURL)
	if err != nil {
		return nil, err
	}
	return &AirtableSettings{Token: token, BaseID: base, TableID: table, APIURL: apiURL}, nil
}
