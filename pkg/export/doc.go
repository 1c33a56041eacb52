// Package export renders schedules as JSON documents, CSV tables and HTML
// price charts.
package export
