package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"MeteoIot.influxDB/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoReading matches the documents of the meteo.temperatures collection.
type mongoReading struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Temp      *float64           `bson:"temp,omitempty"`
	Status    string             `bson:"status,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
}

// storedMongoReading is the read side of mongoReading. Older documents carry no
// status, and temp holds whatever JSON value the device sent.
type storedMongoReading struct {
	Temp      bson.RawValue `bson:"temp"`
	Status    string        `bson:"status"`
	Timestamp time.Time     `bson:"timestamp"`
}

// MongoRepository stores readings as documents in a MongoDB collection.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRepository(ctx context.Context, uri, database, collection string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("configure mongo client: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailable("ping mongo", err)
	}

	coll := client.Database(database).Collection(collection)
	index := mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: -1}}}
	if _, err := coll.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailable("create timestamp index", err)
	}
	return &MongoRepository{client: client, collection: coll}, nil
}

func (r *MongoRepository) Insert(ctx context.Context, reading models.Reading) error {
	doc := mongoReading{
		Temp:      reading.Temperature,
		Status:    reading.Status,
		Timestamp: reading.Timestamp.UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return unavailable("insert reading", err)
	}
	return nil
}

func (r *MongoRepository) Latest(ctx context.Context) (*models.Reading, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

	var doc storedMongoReading
	err := r.collection.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("find latest reading", err)
	}
	return doc.toReading(), nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return unavailable("ping mongo", err)
	}
	return nil
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (d storedMongoReading) toReading() *models.Reading {
	status := d.Status
	if status == "" {
		status = string(models.StatusUnknown)
	}
	return &models.Reading{
		Temperature: numericTemp(d.Temp),
		Status:      status,
		Timestamp:   d.Timestamp.UTC(),
	}
}

// numericTemp keeps numeric temperatures. Strings, booleans and other non-numeric
// values left by older clients read as an absent temperature.
func numericTemp(v bson.RawValue) *float64 {
	var temp float64
	switch v.Type {
	case bson.TypeDouble:
		temp = v.Double()
	case bson.TypeInt32:
		temp = float64(v.Int32())
	case bson.TypeInt64:
		temp = float64(v.Int64())
	default:
		return nil
	}
	if math.IsNaN(temp) || math.IsInf(temp, 0) {
		return nil
	}
	return &temp
}
