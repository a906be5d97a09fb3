// Package config loads and validates RoomSense Core configuration.
//
// Configuration is read from a YAML file, with hardcoded defaults applied
// first and ROOMSENSE_* environment variables applied last. Validation runs
// after all overrides so a misconfigured deployment fails at startup rather
// than at first use.
package config
