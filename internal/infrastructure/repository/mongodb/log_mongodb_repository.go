package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

const defaultPurgeBatchSize = 200

// LogRepositoryMongoDB persists entries into one collection per API key,
// which keeps every client's traffic namespaced under its own opaque key.
type LogRepositoryMongoDB struct {
	collection     *mongo.Collection
	purgeBatchSize int64
}

func NewLogMongoDBRepository(client *mongo.Client, database, apiKey string) *LogRepositoryMongoDB {
	return &LogRepositoryMongoDB{
		collection:     client.Database(database).Collection("logs_" + apiKey),
		purgeBatchSize: defaultPurgeBatchSize,
	}
}

func (r *LogRepositoryMongoDB) Save(ctx context.Context, entry *entity.HTTPLogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("inserting log entry %s: %w", entry.ID, err)
	}
	return nil
}

func (r *LogRepositoryMongoDB) FindRecent(ctx context.Context, limit int64) ([]entity.HTTPLogEntry, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *LogRepositoryMongoDB) FindByStatusCode(ctx context.Context, code int, limit int64) ([]entity.HTTPLogEntry, error) {
	return r.find(ctx, bson.M{"status_code": code}, limit)
}

func (r *LogRepositoryMongoDB) FindByMethod(ctx context.Context, method string, limit int64) ([]entity.HTTPLogEntry, error) {
	return r.find(ctx, bson.M{"method": strings.ToUpper(method)}, limit)
}

func (r *LogRepositoryMongoDB) find(ctx context.Context, filter bson.M, limit int64) ([]entity.HTTPLogEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(entity.ClampLimit(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying log entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []entity.HTTPLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decoding log entries: %w", err)
	}
	return entries, nil
}

func (r *LogRepositoryMongoDB) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteInBatches(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
}

func (r *LogRepositoryMongoDB) DeleteAll(ctx context.Context) (int64, error) {
	return r.deleteInBatches(ctx, bson.M{})
}

// deleteInBatches reads up to purgeBatchSize ids matching the filter, deletes
// them, and repeats until a short batch. Errors stop the loop and propagate
// with the count removed so far.
func (r *LogRepositoryMongoDB) deleteInBatches(ctx context.Context, filter bson.M) (int64, error) {
	var total int64

	for {
		ids, err := r.batchIDs(ctx, filter)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}

		result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return total, fmt.Errorf("deleting log batch: %w", err)
		}
		total += result.DeletedCount

		if int64(len(ids)) < r.purgeBatchSize {
			return total, nil
		}
	}
}

func (r *LogRepositoryMongoDB) batchIDs(ctx context.Context, filter bson.M) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(r.purgeBatchSize).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("selecting purge batch: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding purge batch: %w", err)
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids, nil
}
