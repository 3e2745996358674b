package listener

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog/log"

	kafkaConf "github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/consumers/handler/indexer"
	"github.com/trendora/reco/internal/repositories/embedding"
	"github.com/trendora/reco/pkg/metric"
)

const (
	envPrefix            = "KAFKA_CONSUMERS_PRODUCT_INDEXER"
	bootstrapServers     = "bootstrap.servers"
	groupID              = "group.id"
	autoOffsetReset      = "auto.offset.reset"
	enableAutoCommit     = "enable.auto.commit"
	autoCommitIntervalMs = "auto.commit.interval.ms"
	saslUsername         = "sasl.username"
	saslPassword         = "sasl.password"
	saslMechanism        = "sasl.mechanisms"
	securityProtocol     = "security.protocol"
	clientId             = "client.id"

	flushInterval = 30 * time.Second
)

var (
	once          sync.Once
	kafkaListener *KafkaListener
)

type KafkaListener struct {
	indexerHandler indexer.Handler
	embedder       embedding.Provider
	consumers      []*kafka.Consumer
	kafkaConfig    *kafkaConf.KafkaConfig
	sigChan        chan os.Signal
}

func NewKafkaListener() *KafkaListener {
	once.Do(func() {
		kafkaConfig, err := kafkaConf.NewKafkaConfig().BuildConfigFromEnv(envPrefix)
		if err != nil {
			log.Panic().Err(err).Msg("Failed to build kafka config")
		}
		kafkaListener = &KafkaListener{
			indexerHandler: indexer.NewHandler(indexer.QDRANT),
			embedder:       embedding.NewProvider(embedding.DefaultVersion),
			kafkaConfig:    kafkaConfig,
		}
	})
	return kafkaListener
}

func (k *KafkaListener) Init() {
	topics := strings.Split(k.kafkaConfig.Topics, ",")
	for i := 0; i < k.kafkaConfig.Concurrency; i++ {
		indexString := strconv.Itoa(i)
		consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
			bootstrapServers:     k.kafkaConfig.BootstrapURLs,
			groupID:              k.kafkaConfig.GroupID,
			autoOffsetReset:      k.kafkaConfig.AutoOffsetReset,
			enableAutoCommit:     k.kafkaConfig.AutoCommitEnable,
			autoCommitIntervalMs: k.kafkaConfig.AutoCommitIntervalInMs,
			saslUsername:         k.kafkaConfig.SaslUsername,
			saslPassword:         k.kafkaConfig.SaslPassword,
			securityProtocol:     k.kafkaConfig.SecurityProtocol,
			saslMechanism:        k.kafkaConfig.SaslMechanism,
			clientId:             k.kafkaConfig.ClientID + "-" + indexString,
		})
		if err != nil {
			log.Panic().Err(err).Msg("Failed to create Kafka consumer.")
		}
		err = consumer.SubscribeTopics(topics, nil)
		if err != nil {
			log.Panic().Err(err).Msgf("Failed to subscribe to topics %s", k.kafkaConfig.Topics)
		}
		k.consumers = append(k.consumers, consumer)
	}
	k.sigChan = make(chan os.Signal, 1)
	signal.Notify(k.sigChan, syscall.SIGINT, syscall.SIGTERM)
}

func (k *KafkaListener) Consume() {
	for i, c := range k.consumers {
		log.Info().Msgf("Starting consumption for ProductEvent %v", i)
		go func(c *kafka.Consumer) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Msgf("%v : Recovered from panic: %v", c, r)
					partitions, _ := c.Assignment()
					_, err := c.SeekPartitions(partitions)
					if err != nil {
						log.Error().Msgf("%v : Failed to seek partitions", c)
					}
					metric.Incr("consumer_panic", []string{"group:" + k.kafkaConfig.GroupID, "client:" + k.kafkaConfig.ClientID})
				}
			}()
			run := true

			partitionMessages := make(map[int32][]*kafka.Message)
			flushTimer := time.NewTicker(flushInterval)
			defer flushTimer.Stop()

			for run {
				select {
				case <-k.sigChan:
					log.Info().Msgf("Terminating instance %v", c)
					for partition, messages := range partitionMessages {
						if len(messages) > 0 {
							log.Info().Msgf("Processing remaining %d messages from partition %d before shutdown", len(messages), partition)
							k.process(c, messages)
						}
					}
					if err := c.Unsubscribe(); err != nil {
						log.Error().Msg("Error while unsubscribing topic")
					}
					if err := c.Close(); err != nil {
						log.Error().Msg("Error while closing consumer")
					}
					run = false

				case <-flushTimer.C:
					for partition, messages := range partitionMessages {
						if len(messages) > 0 {
							k.process(c, messages)
							partitionMessages[partition] = partitionMessages[partition][:0]
						}
					}

				default:
					ev := c.Poll(k.kafkaConfig.PollTimeout)
					if ev == nil {
						continue
					}
					switch e := ev.(type) {
					case *kafka.Message:
						metric.Incr("events_consumed", []string{
							"topic:" + *e.TopicPartition.Topic,
							"group:" + k.kafkaConfig.GroupID,
							"client:" + k.kafkaConfig.ClientID,
						})
						partition := e.TopicPartition.Partition
						partitionMessages[partition] = append(partitionMessages[partition], e)
						if len(partitionMessages[partition]) == k.kafkaConfig.BatchSize {
							k.process(c, partitionMessages[partition])
							partitionMessages[partition] = partitionMessages[partition][:0]
						}

					case kafka.Error:
						if e.IsFatal() {
							log.Error().Err(e).Msg("Fatal Kafka error. Shutting down consumer.")
							for partition, messages := range partitionMessages {
								if len(messages) > 0 {
									log.Info().Msgf("Processing remaining %d messages from partition %d before fatal error", len(messages), partition)
									k.process(c, messages)
								}
							}
							run = false
						} else {
							log.Error().Err(e).Msg("Non-fatal Kafka error encountered.")
						}

					default:
						log.Debug().Msgf("Ignored event: %#v", e)
					}
				}
			}
		}(c)
	}
}

func (k *KafkaListener) process(consumer *kafka.Consumer, messages []*kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Panic occurred while processing product events: %v\n%s", r, debug.Stack())
		}
	}()
	startOffset := messages[0].TopicPartition.Offset
	topic := messages[0].TopicPartition.Topic
	partition := messages[0].TopicPartition.Partition

	events := make([]ProductEvent, 0, len(messages))
	for _, msg := range messages {
		var event ProductEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error().Err(err).Msg("Failed to deserialize ProductEvent")
			metric.Incr("product_event_deserialize_error", nil)
			continue
		}
		events = append(events, event)
	}

	isFailed := false
	if err := k.processEvents(events); err != nil {
		log.Error().Err(err).Int("count", len(events)).Msg("Failed to index product events")
		isFailed = true
	}

	if !k.kafkaConfig.AutoCommitEnable {
		if !isFailed {
			if _, err := consumer.Commit(); err != nil {
				log.Error().Err(err).Msg("Failed to commit messages")
			}
		} else {
			seekPartitions := []kafka.TopicPartition{
				{
					Topic:     topic,
					Partition: partition,
					Offset:    startOffset,
				},
			}
			if _, err := consumer.SeekPartitions(seekPartitions); err != nil {
				log.Error().Msgf("%v : Failed to seek partitions", consumer)
			}
		}
	}
}

// processEvents embeds upserts that arrived without a vector and hands the
// batch to the indexer. Later events win when one product appears twice.
func (k *KafkaListener) processEvents(events []ProductEvent) error {
	if len(events) == 0 {
		return nil
	}
	indexerEvent := indexer.Event{Data: make(map[indexer.EventType][]indexer.Data)}

	var pendingTexts []string
	var pendingIndexes []int
	upserts := make([]indexer.Data, 0, len(events))
	for _, event := range events {
		switch event.EventType {
		case EventTypeDelete:
			indexerEvent.Data[indexer.Delete] = append(indexerEvent.Data[indexer.Delete], indexer.Data{Id: event.ProductId})
		case EventTypeUpsert:
			data := indexer.Data{
				Id:      event.ProductId,
				Payload: buildPayload(event),
				Vectors: event.Embedding,
			}
			if len(data.Vectors) == 0 {
				pendingTexts = append(pendingTexts, embeddingText(event))
				pendingIndexes = append(pendingIndexes, len(upserts))
			}
			upserts = append(upserts, data)
		default:
			log.Warn().Str("event_type", event.EventType).Str("product_id", event.ProductId).Msg("unknown product event type")
			metric.Incr("product_event_unknown_type", nil)
		}
	}

	if len(pendingTexts) > 0 {
		vectors, err := k.embedder.EmbedBatch(context.Background(), pendingTexts)
		if err != nil {
			return err
		}
		for i, index := range pendingIndexes {
			upserts[index].Vectors = vectors[i]
		}
	}
	if len(upserts) > 0 {
		indexerEvent.Data[indexer.Upsert] = upserts
	}
	return k.indexerHandler.Process(indexerEvent)
}

func buildPayload(event ProductEvent) map[string]interface{} {
	return map[string]interface{}{
		"title":     event.Title,
		"category":  event.Category,
		"tags":      event.Tags,
		"price":     event.Price,
		"image_url": event.ImageUrl,
	}
}

func embeddingText(event ProductEvent) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{event.Title, event.Category, event.Tags} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}
