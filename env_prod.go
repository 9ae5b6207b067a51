//go:build !dev

package main

import "namedesk/internal/database"

const defaultEnvironment = database.EnvProduction
