package seo

import "errors"

// ErrNotFound is returned when no resolver knows the page.
var ErrNotFound = errors.New("seo entry not found")
