package testutil

import (
	"barberbook/pkg/client"
	"barberbook/pkg/config"
	"barberbook/pkg/logger"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MongoURIEnv       = "MONGO_URI"
	ConnectionTimeout = 10 * time.Second
)

// NewMongoConfig connects to the server named by MONGO_URI and returns a
// config for a throwaway database that is dropped when the test ends. The
// test is skipped when MONGO_URI is unset.
func NewMongoConfig(t *testing.T) *config.Config {
	t.Helper()

	mongoURI := os.Getenv(MongoURIEnv)
	if mongoURI == "" {
		t.Skipf("%s not set, skipping MongoDB test", MongoURIEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := fmt.Sprintf("barberbook_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
		defer cancel()
		if err := mongoClient.Database(dbName).Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		if err := mongoClient.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})

	return &config.Config{
		MongoURI:          mongoURI,
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               logger.Nop(),
		Client:            &client.Client{Mongo: mongoClient},
	}
}
