// Package kafka connects the in-process event bus to Kafka: bus events are
// mirrored out through a sarama producer and notification requests from
// other services are consumed with kafka-go.
package kafka

import (
	"github.com/IBM/sarama"
)

func InitKafkaProducer(brokers []string, clientID string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	// Keyed by channel or user so one channel's events stay ordered
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = clientID
	config.Producer.MaxMessageBytes = 1000000

	return sarama.NewSyncProducer(brokers, config)
}
