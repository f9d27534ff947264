package kafka_config

import "time"

const (
	// Empty disables event publishing.
	DefaultKafkaBrokers = ""

	DefaultBookingsTopic = "bookings.events"
	DefaultDLQTopic      = ""

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerWriteTimeout = 5 * time.Second
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultEnableMiddleware = true
)
