package cli

import (
	"errors"
	"io/fs"
	"net/url"

	"github.com/aidanlsb/vaultkit/internal/airtable"
	"github.com/aidanlsb/vaultkit/internal/config"
	"github.com/aidanlsb/vaultkit/internal/crypt"
	"github.com/aidanlsb/vaultkit/internal/note"
	"github.com/aidanlsb/vaultkit/internal/tagger"
	"github.com/aidanlsb/vaultkit/internal/vault"
)

// Error codes for JSON output
const (
	ErrDirectoryNotFound = "DIRECTORY_NOT_FOUND"
	ErrInvalidPattern    = "INVALID_PATTERN"
	ErrInvalidTag        = "INVALID_TAG"
	ErrConfigInvalid     = "CONFIG_INVALID"
	ErrMissingEnv        = "MISSING_ENV"
	ErrInvalidEnv        = "INVALID_ENV"
	ErrFileNotFound      = "FILE_NOT_FOUND"
	ErrFileAccess        = "FILE_ACCESS_ERROR"
	ErrNotMarkdown       = "NOT_MARKDOWN"
	ErrMalformedNote     = "MALFORMED_NOTE"
	ErrRemote            = "REMOTE_ERROR"
	ErrStore             = "STORE_ERROR"
	ErrKeyExists         = "KEY_EXISTS"
	ErrInvalidKey        = "INVALID_KEY"
	ErrInvalidToken      = "INVALID_TOKEN"
	ErrInternal          = "INTERNAL_ERROR"
)

// classify maps an error to its JSON code and a suggestion.
func classify(err error) (string, string) {
	var (
		notDir    *vault.NotADirectoryError
		badGlob   *vault.InvalidPatternError
		badTag    *tagger.InvalidTagError
		notFound  *note.NotFoundError
		wrongKind *note.WrongKindError
		malformed *note.MalformedError
		missing   *config.MissingEnvVarError
		invalid   *config.InvalidEnvVarError
		api       *airtable.APIError
		transport *url.Error
		pathErr   *fs.PathError
	)

	switch {
	case errors.As(err, &notDir):
		return ErrDirectoryNotFound, "Pass an existing directory with --directory"
	case errors.As(err, &badGlob):
		return ErrInvalidPattern, "Exclude patterns use doublestar syntax, e.g. 'templates/**'"
	case errors.As(err, &badTag):
		return ErrInvalidTag, "Tags are a single word; a leading '#' is optional"
	case errors.As(err, &notFound):
		return ErrFileNotFound, ""
	case errors.As(err, &wrongKind):
		return ErrNotMarkdown, ""
	case errors.As(err, &malformed):
		return ErrMalformedNote, "Front matter must be a YAML mapping between '---' lines"
	case errors.As(err, &missing):
		return ErrMissingEnv, "Set it in the environment or in the file named by ENV_FILE_PATH (default ./.env)"
	case errors.As(err, &invalid):
		return ErrInvalidEnv, ""
	case errors.As(err, &api):
		return ErrRemote, "Check the token's scopes and the base and table ids"
	case errors.As(err, &transport):
		return ErrRemote, "Check AIRTABLE_API_URL and the network connection"
	case errors.Is(err, crypt.ErrKeyFileExists):
		return ErrKeyExists, "Use --force to replace it; files encrypted with the old key become unreadable"
	case errors.Is(err, crypt.ErrInvalidKey):
		return ErrInvalidKey, ""
	case errors.Is(err, crypt.ErrInvalidToken):
		return ErrInvalidToken, "The file was encrypted with another key or has been modified"
	case errors.Is(err, fs.ErrNotExist):
		return ErrFileNotFound, ""
	case errors.As(err, &pathErr):
		return ErrFileAccess, ""
	default:
		return ErrInternal, ""
	}
}
