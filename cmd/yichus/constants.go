package main

import "time"

// Default limits for CLI commands.
const (
	DefaultSearchLimit = 10
	DefaultListLimit   = 50
	DefaultExportLimit = 1000
)

// watchDebounce is how long the watch command waits after the last file
// change before recomputing.
const watchDebounce = 500 * time.Millisecond

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}

// Valid status categories for search filtering.
var validCategories = []string{"ervah", "lav", "zikah", "mitzvah", "union"}
