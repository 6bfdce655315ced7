// Package constants provides shared constants used throughout nc2ldap:
// timeouts, defaults for the sync schedule, LDAP schema names and file permissions.
package constants

import "time"

// Timeouts
const (
	// DefaultHTTPTimeout bounds a single CardDAV request
	DefaultHTTPTimeout = 30 * time.Second

	// DialTimeout is the timeout for establishing the LDAP connection
	DialTimeout = 10 * time.Second

	// SyncTimeout bounds one scheduled sync cycle
	SyncTimeout = 5 * time.Minute

	// CommandTimeout is the default timeout for one-shot CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the metrics server
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout protects the metrics server from slow clients
	ReadHeaderTimeout = 5 * time.Second
)

// Schedule
const (
	// DefaultSyncInterval is the default IMPORT_SCHEDULE
	DefaultSyncInterval = 1 * time.Hour

	// MinSyncInterval rejects schedules that would hammer both servers
	MinSyncInterval = 10 * time.Second
)

// Defaults
const (
	// DefaultRegion is used to parse phone numbers written without a country code
	DefaultRegion = "DE"

	// DefaultMetricsAddr is the listen address of `nc2ldap serve`
	DefaultMetricsAddr = ":9090"

	// CardDAVBasePath is the Nextcloud DAV root for user address books
	CardDAVBasePath = "/remote.php/dav/addressbooks/users"
)

// LDAP schema
const (
	// ObjectClassPerson is the object class of every phone book entry
	ObjectClassPerson = "inetOrgPerson"

	// ObjectClassUnit is the object class of the phone book container
	ObjectClassUnit = "organizationalUnit"

	// EntryFilter selects phone book entries
	EntryFilter = "(objectClass=inetOrgPerson)"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
