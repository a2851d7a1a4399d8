package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nutrascan/internal/locale"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/storage"
)

const namespaceProfile = "profile"

// ProfileService 读写每个账号唯一的档案快照。
type ProfileService struct {
	store storage.Store
}

// NewProfileService 构造 ProfileService。
func NewProfileService(store storage.Store) *ProfileService {
	return &ProfileService{store: store}
}

// Load 返回账号的档案，尚未完成引导时返回 nil。
func (s *ProfileService) Load(accountID string) (*model.Profile, error) {
	var profile model.Profile
	if err := storage.GetJSON(s.store, namespaceProfile, accountID, &profile); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile.WeightHistory == nil {
		profile.WeightHistory = []model.WeightRecord{}
	}
	return &profile, nil
}

// Save 整体覆盖写入档案。
func (s *ProfileService) Save(accountID string, profile model.Profile) error {
	if err := storage.SetJSON(s.store, namespaceProfile, accountID, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// AppendWeightRecord 追加一条体重记录并更新当前体重；目标不会重新计算。
func (s *ProfileService) AppendWeightRecord(accountID string, profile model.Profile, weight float64, now time.Time, pref locale.Preference) (model.Profile, error) {
	if weight <= 0 {
		return profile, newValidationError("weight", "Informe um peso válido.")
	}

	history := make([]model.WeightRecord, 0, len(profile.WeightHistory)+1)
	history = append(history, profile.WeightHistory...)
	history = append(history, model.WeightRecord{
		Weight:    weight,
		Date:      pref.ShortDate(now),
		Timestamp: now.UnixMilli(),
	})

	updated := profile
	updated.WeightHistory = history
	updated.Weight = FormatWeight(weight)

	if err := s.Save(accountID, updated); err != nil {
		return profile, err
	}
	return updated, nil
}

// FormatWeight 以最短形式输出体重数值。
func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}
