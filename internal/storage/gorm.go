package storage

import (
	"errors"

	"github.com/nutrascan/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 使用 kv_records 表保存快照，默认后端为 SQLite 文件。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 构造 GormStore，调用方负责完成迁移。
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

func (s *GormStore) Get(namespace, key string) ([]byte, error) {
	if err := validateKey(namespace, key); err != nil {
		return nil, err
	}

	var record db.KVRecord
	if err := s.db.Where("namespace = ? AND key = ?", namespace, key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("get", namespace, key, err)
	}
	return []byte(record.Value), nil
}

func (s *GormStore) Set(namespace, key string, value []byte) error {
	if err := validateKey(namespace, key); err != nil {
		return err
	}

	record := db.KVRecord{Namespace: namespace, Key: key, Value: string(value)}
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      string(value),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_at": nil,
		}),
	}).Create(&record).Error; err != nil {
		return persistenceError("set", namespace, key, err)
	}
	return nil
}

func (s *GormStore) Delete(namespace, key string) error {
	if err := validateKey(namespace, key); err != nil {
		return err
	}

	if err := s.db.Unscoped().
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&db.KVRecord{}).Error; err != nil {
		return persistenceError("delete", namespace, key, err)
	}
	return nil
}

func (s *GormStore) Keys(namespace string) ([]string, error) {
	var keys []string
	if err := s.db.Model(&db.KVRecord{}).
		Where("namespace = ?", namespace).
		Order("key ASC").
		Pluck("key", &keys).Error; err != nil {
		return nil, persistenceError("keys", namespace, "*", err)
	}
	return keys, nil
}

// Close 关闭底层连接
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
