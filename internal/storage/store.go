package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound 当命名空间下不存在指定键时返回
	ErrNotFound = errors.New("record not found")
	// ErrPersistence 表示写入或序列化失败，与业务错误区分
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidKey 命名空间或键为空或包含非法字符
	ErrInvalidKey = errors.New("invalid namespace or key")
)

// Store 是按命名空间划分的键值存储，每次写入都是完整快照。
// 单个键的写入是原子的，跨键写入不提供事务。
type Store interface {
	Get(namespace, key string) ([]byte, error)
	Set(namespace, key string, value []byte) error
	Delete(namespace, key string) error
	Keys(namespace string) ([]string, error)
	Close() error
}

// GetJSON 读取并反序列化一个键，不存在时返回 ErrNotFound。
func GetJSON(s Store, namespace, key string, dst interface{}) error {
	raw, err := s.Get(namespace, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: decode %s/%s: %v", ErrPersistence, namespace, key, err)
	}
	return nil
}

// SetJSON 序列化 value 并整体覆盖写入。
func SetJSON(s Store, namespace, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", ErrPersistence, namespace, key, err)
	}
	return s.Set(namespace, key, raw)
}

func validateKey(namespace, key string) error {
	if strings.TrimSpace(namespace) == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(namespace, `/\`) || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	if namespace == "." || namespace == ".." || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}

func persistenceError(op, namespace, key string, err error) error {
	return fmt.Errorf("%w: %s %s/%s: %v", ErrPersistence, op, namespace, key, err)
}
