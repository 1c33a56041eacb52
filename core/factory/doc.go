// Package factory instantiates configured modules by type name. A
// ModuleConfig such as
//
//	sinks:
//	  - type: influx
//	    conf: {url: "http://influx:8086", bucket: energy}
//
// is turned into an implementation by the factory registered under
// "influx", which decodes conf with Decode.
package factory
