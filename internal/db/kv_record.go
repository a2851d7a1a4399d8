package db

import "gorm.io/gorm"

// KVRecord 存储按命名空间划分的 JSON 快照，每个 (namespace, key) 唯一。
type KVRecord struct {
	gorm.Model
	Namespace string `gorm:"size:64;not null;uniqueIndex:idx_kv_namespace_key"`
	Key       string `gorm:"size:191;not null;uniqueIndex:idx_kv_namespace_key"`
	Value     string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (KVRecord) TableName() string {
	return "kv_records"
}
