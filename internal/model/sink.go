package model

// Sink defines a generic interface for delivering finished records to a
// persistent store or transport.
type Sink interface {
	// Write delivers a batch of finished records. The header describes the
	// expected column order of aggregated records and is empty in
	// passthrough mode.
	Write(records []Record, header string) error
}
