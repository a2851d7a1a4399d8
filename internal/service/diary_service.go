package service

import (
	"errors"
	"fmt"

	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/storage"
)

const namespaceDiary = "diary"

// DiaryService 维护账号的饮食日记，按时间倒序保存。
type DiaryService struct {
	store storage.Store
}

// NewDiaryService 构造 DiaryService。
func NewDiaryService(store storage.Store) *DiaryService {
	return &DiaryService{store: store}
}

// Load 返回账号的日记，不存在时为空切片。
func (s *DiaryService) Load(accountID string) ([]model.DiaryEntry, error) {
	var entries []model.DiaryEntry
	if err := storage.GetJSON(s.store, namespaceDiary, accountID, &entries); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []model.DiaryEntry{}, nil
		}
		return nil, fmt.Errorf("load diary: %w", err)
	}
	if entries == nil {
		entries = []model.DiaryEntry{}
	}
	return entries, nil
}

// Save 整体覆盖写入日记。
func (s *DiaryService) Save(accountID string, entries []model.DiaryEntry) error {
	if entries == nil {
		entries = []model.DiaryEntry{}
	}
	if err := storage.SetJSON(s.store, namespaceDiary, accountID, entries); err != nil {
		return fmt.Errorf("save diary: %w", err)
	}
	return nil
}

// Append 将记录插入到最前面。id 与已有记录冲突时顺延，保证唯一。
func (s *DiaryService) Append(accountID string, entry model.DiaryEntry) ([]model.DiaryEntry, model.DiaryEntry, error) {
	entries, err := s.Load(accountID)
	if err != nil {
		return nil, model.DiaryEntry{}, err
	}

	used := make(map[int64]struct{}, len(entries))
	for _, existing := range entries {
		used[existing.ID] = struct{}{}
	}
	if entry.ID <= 0 {
		entry.ID = entry.Timestamp
	}
	for {
		if _, taken := used[entry.ID]; !taken {
			break
		}
		entry.ID++
	}

	updated := make([]model.DiaryEntry, 0, len(entries)+1)
	updated = append(updated, entry)
	updated = append(updated, entries...)
	if err := s.Save(accountID, updated); err != nil {
		return nil, model.DiaryEntry{}, err
	}
	return updated, entry, nil
}

// Remove 按 id 删除记录；id 不存在时日记保持不变。
func (s *DiaryService) Remove(accountID string, id int64) ([]model.DiaryEntry, error) {
	entries, err := s.Load(accountID)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.DiaryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID != id {
			filtered = append(filtered, entry)
		}
	}
	if err := s.Save(accountID, filtered); err != nil {
		return nil, err
	}
	return filtered, nil
}

// Update 按 id 替换记录。
func (s *DiaryService) Update(accountID string, entry model.DiaryEntry) ([]model.DiaryEntry, error) {
	entries, err := s.Load(accountID)
	if err != nil {
		return nil, err
	}

	found := false
	updated := make([]model.DiaryEntry, len(entries))
	for i, existing := range entries {
		if existing.ID == entry.ID {
			updated[i] = entry
			found = true
			continue
		}
		updated[i] = existing
	}
	if !found {
		return nil, ErrEntryNotFound
	}
	if err := s.Save(accountID, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
