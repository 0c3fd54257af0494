// Package config loads and validates the Gray Logic Remote configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by GLREMOTE_* environment variables. The loaded
// Config is immutable after Load returns; components receive the sections
// they need at construction.
//
// Note that the remote server endpoint in this file only seeds the session
// store on first run. Once a user has changed the endpoint from the app,
// the persisted value in the session store takes precedence.
package config
