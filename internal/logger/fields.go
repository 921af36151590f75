package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"

	FieldQueueItem = "queue_item_id"
	FieldFileName  = "file_name"
	FieldCandidate = "candidate_id"
	FieldPosting   = "posting_id"
	FieldFolder    = "folder_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the fields describing the AI provider and model.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the AI provider and model to the logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// QueueItemFields describes a queue item in log entries.
func QueueItemFields(id, fileName string) []zap.Field {
	return StringFields(
		StringField{Key: FieldQueueItem, Value: id},
		StringField{Key: FieldFileName, Value: fileName},
	)
}

// IDField renders a numeric record id. Nil ids are omitted.
func IDField(key string, id *int64) []zap.Field {
	if id == nil {
		return nil
	}
	return StringFields(StringField{Key: key, Value: strconv.FormatInt(*id, 10)})
}

// EvaluationFields describes a candidate/posting pair.
func EvaluationFields(candidateID, postingID int64) []zap.Field {
	return []zap.Field{
		zap.Int64(FieldCandidate, candidateID),
		zap.Int64(FieldPosting, postingID),
	}
}
