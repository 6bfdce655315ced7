// Package config loads the sync settings from config files, .env files and
// the environment, and validates them.
package config

import (
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/phone"
)

// Keys, as environment variables. Config files use the lower-case form.
const (
	KeyNextcloudURL         = "NEXTCLOUD_URL"
	KeyNextcloudUser        = "NEXTCLOUD_USER"
	KeyNextcloudToken       = "NEXTCLOUD_TOKEN"
	KeyNextcloudAddressBook = "NEXTCLOUD_ADDRESS_BOOK"
	KeyLDAPServer           = "LDAP_SERVER"
	KeyLDAPPhoneBook        = "LDAP_PHONEBOOK"
	KeyLDAPAdminUser        = "LDAP_ADMIN_USER"
	KeyLDAPAdminPassword    = "LDAP_ADMIN_PASSWORD"
	KeyImportSchedule       = "IMPORT_SCHEDULE"
	KeyPhoneRegion          = "PHONE_REGION"
	KeyMetricsAddr          = "METRICS_ADDR"
)

// DefaultAddressBook is the address book every Nextcloud account starts with.
const DefaultAddressBook = "contacts"

// EnvFiles are loaded in order; variables already set are never overridden.
var EnvFiles = []string{".env.local", ".env"}

// Nextcloud holds the CardDAV settings.
type Nextcloud struct {
	URL         string `validate:"required,url"`
	User        string `validate:"required"`
	Token       string `validate:"required"`
	AddressBook string `validate:"required"`
}

// LDAP holds the phone book settings.
type LDAP struct {
	Server        string `validate:"required,url"`
	PhoneBook     string `validate:"required"`
	AdminUser     string `validate:"required"`
	AdminPassword string `validate:"required"`
}

// Config is the complete sync configuration.
type Config struct {
	Nextcloud   Nextcloud
	LDAP        LDAP
	Schedule    time.Duration `validate:"min=10s"`
	Region      string        `validate:"region"`
	MetricsAddr string        `validate:"listen_addr"`

	// File is the config file that was read, if any.
	File string `validate:"-"`
}

// LoadEnvFiles loads .env files from the working directory.
// Missing files are ignored.
func LoadEnvFiles() {
	for _, file := range EnvFiles {
		_ = godotenv.Load(file)
	}
}

// New returns a viper instance with the defaults and environment binding
// used by Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(key(KeyNextcloudAddressBook), DefaultAddressBook)
	v.SetDefault(key(KeyImportSchedule), constants.DefaultSyncInterval)
	v.SetDefault(key(KeyPhoneRegion), constants.DefaultRegion)
	v.SetDefault(key(KeyMetricsAddr), constants.DefaultMetricsAddr)
	return v
}

// Load reads the configuration. An explicit configFile must exist;
// otherwise .nc2ldap.yaml is looked up in the home and working directory.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		v.SetConfigName(".nc2ldap")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "cannot read config file", err)
			}
		}
	}

	cfg := &Config{
		Nextcloud: Nextcloud{
			URL:         strings.TrimRight(v.GetString(key(KeyNextcloudURL)), "/"),
			User:        v.GetString(key(KeyNextcloudUser)),
			Token:       v.GetString(key(KeyNextcloudToken)),
			AddressBook: v.GetString(key(KeyNextcloudAddressBook)),
		},
		LDAP: LDAP{
			Server:        v.GetString(key(KeyLDAPServer)),
			PhoneBook:     v.GetString(key(KeyLDAPPhoneBook)),
			AdminUser:     v.GetString(key(KeyLDAPAdminUser)),
			AdminPassword: v.GetString(key(KeyLDAPAdminPassword)),
		},
		Schedule:    v.GetDuration(key(KeyImportSchedule)),
		Region:      strings.ToUpper(v.GetString(key(KeyPhoneRegion))),
		MetricsAddr: v.GetString(key(KeyMetricsAddr)),
		File:        v.ConfigFileUsed(),
	}
	return cfg, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	return validate(c)
}

// ValidateSource checks only what reading the address book needs.
func (c *Config) ValidateSource() error {
	return validate(&c.Nextcloud)
}

// ValidateDirectory checks only what writing the phone book needs.
func (c *Config) ValidateDirectory() error {
	return validate(&c.LDAP)
}

func key(env string) string {
	return strings.ToLower(env)
}

var validate = func() func(any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return phone.ValidRegion(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("listen_addr", func(fl validator.FieldLevel) bool {
		_, _, err := net.SplitHostPort(fl.Field().String())
		return err == nil
	})

	return func(s any) error {
		err := v.Struct(s)
		if err == nil {
			return nil
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errors.NewConfigError("config", err.Error(), err)
		}
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
		return errors.NewConfigError("config", strings.Join(problems, "; "), err)
	}
}()

// describe names the offending setting by its environment variable.
func describe(fe validator.FieldError) string {
	name := envNames[fe.StructNamespace()]
	if name == "" {
		name = fe.StructNamespace()
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "url":
		return name + " must be a URL"
	case "min":
		return name + " must be at least " + fe.Param()
	case "region":
		return name + " must be a two-letter region code"
	case "listen_addr":
		return name + " must be host:port"
	}
	return name + " is invalid"
}

var envNames = map[string]string{
	"Config.Nextcloud.URL":         KeyNextcloudURL,
	"Config.Nextcloud.User":        KeyNextcloudUser,
	"Config.Nextcloud.Token":       KeyNextcloudToken,
	"Config.Nextcloud.AddressBook": KeyNextcloudAddressBook,
	"Config.LDAP.Server":           KeyLDAPServer,
	"Config.LDAP.PhoneBook":        KeyLDAPPhoneBook,
	"Config.LDAP.AdminUser":        KeyLDAPAdminUser,
	"Config.LDAP.AdminPassword":    KeyLDAPAdminPassword,
	"Config.Schedule":              KeyImportSchedule,
	"Config.Region":                KeyPhoneRegion,
	"Config.MetricsAddr":           KeyMetricsAddr,
	"Nextcloud.URL":                KeyNextcloudURL,
	"Nextcloud.User":               KeyNextcloudUser,
	"Nextcloud.Token":              KeyNextcloudToken,
	"Nextcloud.AddressBook":        KeyNextcloudAddressBook,
	"LDAP.Server":                  KeyLDAPServer,
	"LDAP.PhoneBook":               KeyLDAPPhoneBook,
	"LDAP.AdminUser":               KeyLDAPAdminUser,
	"LDAP.AdminPassword":           KeyLDAPAdminPassword,
}
