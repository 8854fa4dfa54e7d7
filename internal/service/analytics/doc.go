// Package analytics records page views and aggregates them for the admin
// dashboard. Bot traffic is flagged at ingestion from the User-Agent.
package analytics
