package storage

import (
	"os"
	"testing"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

// Set YUI_TEST_MYSQL_DSN to a disposable database to run against MySQL
func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("YUI_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("YUI_TEST_MYSQL_DSN not set")
	}

	runStoreContract(t, func(t *testing.T) interfaces.StoryStore {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Discard, TranslateError: true})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		s, err := NewGormStore(db)
		if err != nil {
			t.Fatalf("NewGormStore: %v", err)
		}
		for _, model := range []any{&models.FrameRecord{}, &models.ChapterRecord{}, &models.ResourceRecord{}, &models.ProjectRecord{}} {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				t.Fatalf("truncate: %v", err)
			}
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}
