package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"Yui-Editor/studio/internal/config"
	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

type MySQLStore struct {
	db *gorm.DB
}

var _ interfaces.StoryStore = (*MySQLStore)(nil)

func NewMySQLStore(cfg config.MySQLConfig) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return NewGormStore(db)
}

// NewGormStore wraps an open gorm connection and migrates the schema
func NewGormStore(db *gorm.DB) (*MySQLStore, error) {
	if err := db.AutoMigrate(
		&models.ProjectRecord{},
		&models.ChapterRecord{},
		&models.FrameRecord{},
		&models.ResourceRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *MySQLStore) GetDB() *gorm.DB {
	return s.db
}

// Transaction helper
func (s *MySQLStore) WithTx(ctx context.Context, fn func(*gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func requireProject(tx *gorm.DB, id models.ProjectID) error {
	var n int64
	if err := tx.Model(&models.ProjectRecord{}).Where("id = ?", string(id)).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return nil
}

func findChapter(tx *gorm.DB, id models.ProjectID, chapter string) (*models.ChapterRecord, error) {
	if err := requireProject(tx, id); err != nil {
		return nil, err
	}
	var rec models.ChapterRecord
	err := tx.Where("project_id = ? AND name = ?", string(id), chapter).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrChapterNotFound, chapter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chapter: %w", err)
	}
	return &rec, nil
}

func findFrame(tx *gorm.DB, id models.ProjectID, fid models.FrameID) (*models.FrameRecord, error) {
	if err := requireProject(tx, id); err != nil {
		return nil, err
	}
	var rec models.FrameRecord
	err := tx.Where("project_id = ? AND frame_id = ?", string(id), int(fid)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrFrameNotFound, fid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	return &rec, nil
}

func (s *MySQLStore) InitProject(ctx context.Context, name string) (models.ProjectID, error) {
	name = projectKey(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty project name", ErrInvalidName)
	}

	var id models.ProjectID
	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		var rec models.ProjectRecord
		err := tx.Where("name = ?", name).First(&rec).Error
		if err == nil {
			id = models.ProjectID(rec.ID)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		rec = models.ProjectRecord{ID: string(newProjectID()), Name: name}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		id = models.ProjectID(rec.ID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to init project: %w", err)
	}
	return id, nil
}

func (s *MySQLStore) ListProjects(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.ProjectRecord{}).Order("created_at, id").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return names, nil
}

func (s *MySQLStore) ProjectName(ctx context.Context, id models.ProjectID) (string, error) {
	var rec models.ProjectRecord
	err := s.db.WithContext(ctx).Where("id = ?", string(id)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read project: %w", err)
	}
	return rec.Name, nil
}

func (s *MySQLStore) RemoveProject(ctx context.Context, name string) (models.ProjectID, error) {
	name = projectKey(name)
	var id models.ProjectID
	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		var rec models.ProjectRecord
		err := tx.Where("name = ?", name).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, name)
		}
		if err != nil {
			return err
		}

		for _, model := range []any{&models.FrameRecord{}, &models.ChapterRecord{}, &models.ResourceRecord{}} {
			if err := tx.Where("project_id = ?", rec.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to remove project rows: %w", err)
			}
		}
		id = models.ProjectID(rec.ID)
		return tx.Delete(&rec).Error
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *MySQLStore) ListResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType) ([]string, error) {
	db := s.db.WithContext(ctx)
	if err := requireProject(db, id); err != nil {
		return nil, err
	}

	var names []string
	err := db.Model(&models.ResourceRecord{}).
		Where("project_id = ? AND type = ?", string(id), string(rtype)).
		Order("id").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return names, nil
}

func (s *MySQLStore) AddResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty resource name", ErrInvalidName)
	}
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, id); err != nil {
			return err
		}
		rec := models.ResourceRecord{ProjectID: string(id), Type: string(rtype), Name: name}
		// re-uploading a file overwrites it
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
	})
}

func (s *MySQLStore) RemoveResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, id); err != nil {
			return err
		}
		res := tx.Where("project_id = ? AND type = ? AND name = ?", string(id), string(rtype), name).
			Delete(&models.ResourceRecord{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove resource: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s/%s", ErrResourceNotFound, rtype, name)
		}
		return nil
	})
}

func (s *MySQLStore) RenameResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: empty resource name", ErrInvalidName)
	}
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		if err := requireProject(tx, id); err != nil {
			return err
		}

		var rec models.ResourceRecord
		err := tx.Where("project_id = ? AND type = ? AND name = ?", string(id), string(rtype), oldName).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s/%s", ErrResourceNotFound, rtype, oldName)
		}
		if err != nil {
			return err
		}
		if oldName == newName {
			return nil
		}

		var taken int64
		if err := tx.Model(&models.ResourceRecord{}).
			Where("project_id = ? AND type = ? AND name = ?", string(id), string(rtype), newName).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("%w: %s/%s", ErrResourceExists, rtype, newName)
		}
		return tx.Model(&rec).Update("name", newName).Error
	})
}

func (s *MySQLStore) ListChapters(ctx context.Context, id models.ProjectID) ([]string, error) {
	db := s.db.WithContext(ctx)
	if err := requireProject(db, id); err != nil {
		return nil, err
	}

	var names []string
	err := db.Model(&models.ChapterRecord{}).
		Where("project_id = ?", string(id)).
		Order("position").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return names, nil
}

func (s *MySQLStore) AddChapter(ctx context.Context, id models.ProjectID, chapter string) error {
	if chapter == "" {
		return fmt.Errorf("%w: empty chapter name", ErrInvalidName)
	}
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := findChapter(tx, id, chapter); err == nil {
			return fmt.Errorf("%w: %s", ErrChapterExists, chapter)
		} else if !errors.Is(err, ErrChapterNotFound) {
			return err
		}

		var last int
		if err := tx.Model(&models.ChapterRecord{}).
			Where("project_id = ?", string(id)).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		err := tx.Create(&models.ChapterRecord{ProjectID: string(id), Name: chapter, Position: last + 1}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrChapterExists, chapter)
		}
		return err
	})
}

func (s *MySQLStore) RemoveChapter(ctx context.Context, id models.ProjectID, chapter string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		rec, err := findChapter(tx, id, chapter)
		if err != nil {
			return err
		}
		if err := tx.Where("project_id = ? AND chapter_name = ?", string(id), chapter).Delete(&models.FrameRecord{}).Error; err != nil {
			return fmt.Errorf("failed to remove frames: %w", err)
		}
		return tx.Delete(rec).Error
	})
}

func (s *MySQLStore) AppendFrame(ctx context.Context, id models.ProjectID, chapter, frameName string) (models.FrameID, error) {
	if frameName == "" {
		return models.NoFrame, fmt.Errorf("%w: empty frame name", ErrInvalidName)
	}

	fid := models.NoFrame
	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := findChapter(tx, id, chapter); err != nil {
			return err
		}

		var project models.ProjectRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", string(id)).
			First(&project).Error; err != nil {
			return err
		}
		next := project.NextFrame
		if err := tx.Model(&project).Update("next_frame", next+1).Error; err != nil {
			return err
		}

		var last int
		if err := tx.Model(&models.FrameRecord{}).
			Where("project_id = ? AND chapter_name = ?", string(id), chapter).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		detail := models.NewFrameDetail()
		detail.Name = frameName
		data, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal frame: %w", err)
		}

		rec := models.FrameRecord{
			ProjectID:   string(id),
			FrameID:     next,
			ChapterName: chapter,
			Name:        frameName,
			Position:    last + 1,
			Detail:      string(data),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		fid = models.FrameID(next)
		return nil
	})
	if err != nil {
		return models.NoFrame, err
	}
	return fid, nil
}

func (s *MySQLStore) ListFrames(ctx context.Context, id models.ProjectID, chapter string) ([]models.FrameListEntry, error) {
	db := s.db.WithContext(ctx)
	if _, err := findChapter(db, id, chapter); err != nil {
		return nil, err
	}

	var recs []models.FrameRecord
	err := db.Where("project_id = ? AND chapter_name = ?", string(id), chapter).
		Order("position").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	entries := make([]models.FrameListEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, models.FrameListEntry{
			FrameName:   rec.Name,
			ChapterName: chapter,
			ProjectID:   id,
			ID:          models.FrameID(rec.FrameID),
		})
	}
	return entries, nil
}

func (s *MySQLStore) GetFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) (models.FrameDetail, error) {
	rec, err := findFrame(s.db.WithContext(ctx), id, fid)
	if err != nil {
		return models.FrameDetail{}, err
	}

	detail := models.NewFrameDetail()
	if err := json.Unmarshal([]byte(rec.Detail), &detail); err != nil {
		return models.FrameDetail{}, fmt.Errorf("failed to unmarshal frame: %w", err)
	}
	return detail, nil
}

func (s *MySQLStore) ModifyFrame(ctx context.Context, id models.ProjectID, fid models.FrameID, detail models.FrameDetail) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		rec, err := findFrame(tx, id, fid)
		if err != nil {
			return err
		}
		if detail.Name == "" {
			detail.Name = rec.Name
		}
		data, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal frame: %w", err)
		}
		return tx.Model(rec).Updates(map[string]any{"name": detail.Name, "detail": string(data)}).Error
	})
}

func (s *MySQLStore) RemoveFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		rec, err := findFrame(tx, id, fid)
		if err != nil {
			return err
		}
		return tx.Delete(rec).Error
	})
}
