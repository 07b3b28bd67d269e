// Package config handles configuration loading for the docreview client.
//
// # Overview
//
// Configuration comes from three layers, each overriding the one before:
//
//  1. Built-in defaults (see Default)
//  2. A YAML or TOML file, chosen by extension
//  3. DOCREVIEW_* environment variables
//
// The merged result is validated before it is returned, so a Config that
// comes back from Load is always usable.
//
// # Configuration File
//
// The file path is resolved in this order:
//
//  1. The --config flag
//  2. The DOCREVIEW_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/docreview/config.yaml, if it exists
//
// When none of these yields a file, defaults and the environment are used.
//
// # Environment Variable Expansion
//
// Values in the file can reference environment variables:
//
//	server:
//	  base_url: "${DOCREVIEW_BACKEND}/api/v1"
//
// Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Timeouts use Go's time.ParseDuration syntax:
//
//	timeouts:
//	  standard: "30s"
//	  long_running: "2m"
//
// # Configuration Sections
//
// Backend:
//
//	server:
//	  base_url: "http://localhost:8000/api/v1"
//
// Token storage. The driver is file, sqlite or memory:
//
//	storage:
//	  driver: "file"
//	  path: "~/.config/docreview"
//
// Logging. Format is text or json; file enables rotation:
//
//	logging:
//	  level: "info"
//	  format: "text"
//	  file: ""
//
// Terminal output:
//
//	output:
//	  color: true
//
// # Environment Overrides
//
//	DOCREVIEW_BASE_URL        server.base_url
//	DOCREVIEW_TIMEOUT         timeouts.standard
//	DOCREVIEW_LONG_TIMEOUT    timeouts.long_running
//	DOCREVIEW_STORAGE_DRIVER  storage.driver
//	DOCREVIEW_STORAGE_PATH    storage.path
//	DOCREVIEW_LOG_LEVEL       logging.level
//	DOCREVIEW_LOG_FORMAT      logging.format
//	DOCREVIEW_LOG_FILE        logging.file
//	DOCREVIEW_COLOR           output.color
package config
