package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"chat-realtime/internal/repositories/repotest"
	"chat-realtime/internal/services"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoTestClient connects to MONGO_TEST_URI, skipping when it is unset or unreachable
func mongoTestClient(t *testing.T) *mongo.Client {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping MongoDB tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestMessageRepositorySuite(t *testing.T) {
	client := mongoTestClient(t)
	n := 0

	repotest.Run(t, func(t *testing.T) services.MessageRepository {
		n++
		db := client.Database(fmt.Sprintf("chat_realtime_test_%d_%d", time.Now().UnixNano(), n))
		t.Cleanup(func() { _ = db.Drop(context.Background()) })

		repo := NewMessageRepository(db)
		require.NoError(t, repo.EnsureIndexes(context.Background()))
		return repo
	})
}
