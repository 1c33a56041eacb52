// Package events holds PlanEvent, the record of one planning run that the
// coordinator publishes and the metrics, plan log and MQTT publishers consume.
package events
