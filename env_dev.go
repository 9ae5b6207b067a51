//go:build dev

package main

import "namedesk/internal/database"

// defaultEnvironment is used when neither NAMEDESK_ENV nor the config file
// names one. wails dev builds with the dev tag.
const defaultEnvironment = database.EnvDevelopment
