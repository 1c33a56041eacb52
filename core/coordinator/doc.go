// Package coordinator keeps the current plan up to date. It replans on a
// fixed interval, when the price source reports new prices, when the
// tracked activities change and on request. Runs never overlap and a failed
// run leaves the previous plan in place.
package coordinator
