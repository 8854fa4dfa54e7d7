// Package seo resolves per-page metadata through an ordered list of
// resolvers: the seo_entries table first (seeded once from the static file
// when empty), then the static file itself.
//
// The static file is read-only seed data. Admin edits go to the database.
package seo
