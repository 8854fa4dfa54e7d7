// Package contact stores contact-form leads and notifies the site owner.
package contact
