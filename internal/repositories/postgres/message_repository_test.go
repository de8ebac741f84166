package postgres

import (
	"fmt"
	"os"
	"testing"
	"time"

	"chat-realtime/internal/repositories/repotest"
	"chat-realtime/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
	assert.Equal(t, "hello", escapeLike("hello"))
}

// postgresTestDB opens POSTGRES_TEST_DSN, skipping when it is unset or unreachable
func postgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set, skipping PostgreSQL tests")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMessageRepositorySuite(t *testing.T) {
	db := postgresTestDB(t)
	n := 0

	repotest.Run(t, func(t *testing.T) services.MessageRepository {
		n++
		schema := fmt.Sprintf("chat_test_%d_%d", time.Now().UnixNano(), n)
		require.NoError(t, db.Exec("CREATE SCHEMA "+schema).Error)
		t.Cleanup(func() { db.Exec("DROP SCHEMA " + schema + " CASCADE") })

		// pin one connection so search_path sticks for this subtest
		conn := db.Session(&gorm.Session{NewDB: true})
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)
		require.NoError(t, conn.Exec("SET search_path TO "+schema).Error)

		repo := NewMessageRepository(conn)
		require.NoError(t, repo.Migrate())
		return repo
	})
}
