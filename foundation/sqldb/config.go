package sqldb

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/ardanlabs/chaindb/foundation/keystore"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/go-sql-driver/mysql"
)

// validate holds the settings and caches for validating connection
// parameters.
var validate *validator.Validate

// translator is a cache of locale and translation information.
var translator ut.Translator

func init() {

	// Instantiate a validator.
	validate = validator.New()

	// Create a translator for english so the error messages are
	// more human-readable than technical.
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")

	// Register the english error messages for use.
	en_translations.RegisterDefaultTranslations(validate, translator)

	// Use the names which have been specified for the config file rather
	// than the field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Config is the required properties to open a database session.
type Config struct {
	Host       string `yaml:"host" validate:"required"`
	Port       string `yaml:"port" validate:"required,numeric"`
	User       string `yaml:"user" validate:"required"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name" validate:"required"`
	AutoCommit bool   `yaml:"autocommit"`
}

// Validate checks the config carries everything required to connect.
func (cfg Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			fields = append(fields, FieldError{
				Field: verror.Field(),
				Error: verror.Translate(translator),
			})
		}

		return fields
	}

	return nil
}

// DSN returns the go-sql-driver data source name for the config. Time
// columns are parsed into time.Time values. Unless AutoCommit is set the
// session runs with autocommit disabled, so writes need an explicit Commit.
func (cfg Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true

	if !cfg.AutoCommit {
		mc.Params = map[string]string{
			"autocommit": "0",
		}
	}

	return mc.FormatDSN()
}

// =============================================================================

// FieldError is used to indicate an error with a specific config field.
type FieldError struct {
	Field string
	Error string
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, f := range fe {
		msgs[i] = f.Error
	}
	return strings.Join(msgs, "; ")
}

// =============================================================================

// ParamSource provides connection parameters at connect time.
type ParamSource interface {
	Params() (Config, error)
}

// StaticParams is a ParamSource for parameters already in memory, such as
// values parsed from the command line.
type StaticParams Config

// Params implements the ParamSource interface.
func (sp StaticParams) Params() (Config, error) {
	return Config(sp), nil
}

// Store is the behavior required of a keyed configuration store.
type Store interface {
	Get(key string, dest any) error
}

// DefaultParamsKey is the key FileParams reads when none is given.
const DefaultParamsKey = "database"

// FileParams reads connection parameters from a keyed store.
type FileParams struct {
	store Store
	key   string
}

// NewFileParams constructs a ParamSource reading the mapping stored under
// key. An empty key defaults to DefaultParamsKey.
func NewFileParams(store Store, key string) FileParams {
	if key == "" {
		key = DefaultParamsKey
	}

	return FileParams{
		store: store,
		key:   key,
	}
}

// Params implements the ParamSource interface. When the default key is
// missing, or holds a schema name rather than a mapping, the document is
// read as a flat layout where host, port, user, password and database are
// top level keys. A custom key must hold a mapping.
func (fp FileParams) Params() (Config, error) {
	var raw any
	err := fp.store.Get(fp.key, &raw)
	switch {
	case errors.Is(err, keystore.ErrNotFound) && fp.key == DefaultParamsKey:
		return fp.flat()
	case err != nil:
		return Config{}, fmt.Errorf("reading %s: %w", fp.key, err)
	}

	if _, ok := raw.(map[string]any); !ok {
		if fp.key == DefaultParamsKey {
			return fp.flat()
		}
		return Config{}, fmt.Errorf("reading %s: not a mapping of connection parameters", fp.key)
	}

	var cfg Config
	if err := fp.store.Get(fp.key, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (fp FileParams) flat() (Config, error) {
	var cfg Config

	required := []struct {
		key  string
		dest *string
	}{
		{"host", &cfg.Host},
		{"port", &cfg.Port},
		{"user", &cfg.User},
		{"database", &cfg.Name},
	}

	for _, r := range required {
		if err := fp.store.Get(r.key, r.dest); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", r.key, err)
		}
	}

	if err := fp.store.Get("password", &cfg.Password); err != nil && !errors.Is(err, keystore.ErrNotFound) {
		return Config{}, fmt.Errorf("reading password: %w", err)
	}

	return cfg, nil
}
