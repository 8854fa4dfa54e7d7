// Package insights implements Insights email campaigns: saving campaign
// definitions, deciding which are due, and running them against the
// subscriber list.
//
// A run is request-triggered (HTTP, the insights-run command, or the optional
// poller in internal/worker). Each campaign is processed under a named lease
// so overlapping runs never iterate the same campaign at once.
//
// Repository implementations live in repository/postgres/ and repository/memory/.
package insights
