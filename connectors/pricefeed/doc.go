// Package pricefeed fetches price sensor documents over HTTP.
//
// Two payload formats are understood: "sensor", a sensor state document as
// served by a home automation REST API, and "wholesale", the day-ahead
// exchange response of the RTE wholesale market API. Both are turned into a
// price.SensorState so extraction is shared with the other sources.
package pricefeed
