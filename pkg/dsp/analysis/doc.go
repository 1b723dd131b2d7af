// Package analysis provides level metering shared between the audio thread
// and readers on other threads.
//
// A Level is written once per block by the audio thread and read at any
// time by UI or host goroutines:
//
//	var out analysis.Level
//	out.Reset()
//	out.StoreLinear(peak) // audio thread
//	db := out.Load()       // any goroutine
package analysis
