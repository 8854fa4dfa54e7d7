// Package content edits the projects, services and blogs shown on the site.
//
// All three live in one JSON document in the content store. Writes are
// serialized within the process as read-modify-write of that document.
package content
