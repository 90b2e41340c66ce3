// Package factory builds modules named in configuration. A module is a type
// string plus a map of raw settings; registered factories decode the settings
// into their own struct and return the implementation.
//
// Metrics sinks are built this way:
//
//	metrics:
//	  sinks:
//	    - type: prometheus
//	      conf: {pushgateway_url: "http://localhost:9091", job: bnbsched}
package factory
