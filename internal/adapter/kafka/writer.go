package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/county-resilience-service/internal/config"
	"github.com/couchcryptid/county-resilience-service/internal/dashboard"
	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// ScoreMessage is the JSON value of one county's score record.
type ScoreMessage struct {
	SnapshotID string                 `json:"snapshot_id"`
	ScoredAt   time.Time              `json:"scored_at"`
	FIPS       string                 `json:"fips"`
	County     string                 `json:"county"`
	Rank       int                    `json:"rank"`
	Of         int                    `json:"of"`
	Score      float64                `json:"score"`
	Weights    domain.WeightSet       `json:"weights"`
	Raw        domain.FactorBreakdown `json:"raw"`
	Normalized domain.FactorBreakdown `json:"normalized"`
	Tags       []domain.AdvisoryTag   `json:"tags"`
	Insight    string                 `json:"insight"`
}

// Writer produces county score records to a Kafka topic.
// It implements dashboard.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured score topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name implements dashboard.Publisher.
func (w *Writer) Name() string { return "kafka" }

// Publish writes one message per county, keyed by FIPS, in a single
// WriteMessages call.
func (w *Writer) Publish(ctx context.Context, eval dashboard.Evaluation) error {
	if len(eval.Counties) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(eval.Counties))
	for i := range eval.Counties {
		msg, err := serializeToMessage(eval, eval.Counties[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write score messages: %w", err)
	}
	w.logger.Info("scores published", "topic", w.writer.Topic, "messages", len(msgs), "snapshot_id", eval.SnapshotID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one scored county into a Kafka message.
func serializeToMessage(eval dashboard.Evaluation, c domain.ScoredCounty) (kafkago.Message, error) {
	data, err := json.Marshal(ScoreMessage{
		SnapshotID: eval.SnapshotID,
		ScoredAt:   eval.FetchedAt,
		FIPS:       c.FIPS,
		County:     c.Name,
		Rank:       c.Rank,
		Of:         len(eval.Counties),
		Score:      c.Score,
		Weights:    eval.Weights,
		Raw:        c.Raw,
		Normalized: c.Normalized,
		Tags:       c.Tags,
		Insight:    c.Insight(),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize score for %s: %w", c.FIPS, err)
	}
	return kafkago.Message{
		Key:   []byte(c.FIPS),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "snapshot_id", Value: []byte(eval.SnapshotID)},
			{Key: "scored_at", Value: []byte(eval.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
