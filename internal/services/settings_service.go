package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/db"
	"repairshop-backend/internal/models"
	"repairshop-backend/internal/receipt"
	"repairshop-backend/internal/repositories"
)

const settingsCacheTTL = 10 * time.Minute

var publicSettingKeys = []string{
	models.SettingStoreName,
	models.SettingStorePhone,
	models.SettingStoreLogoPath,
}

type SettingsService struct {
	Repo     *repositories.StoreSettingRepository
	Currency string
	Width    int
}

func NewSettingsService(conn db.DBTX, currency string, width int) *SettingsService {
	return &SettingsService{
		Repo:     repositories.NewStoreSettingRepository(conn),
		Currency: currency,
		Width:    width,
	}
}

// Get returns the public store settings, from Redis when it is up.
func (s *SettingsService) Get(ctx context.Context) (*models.StoreSettings, error) {
	if data, ok := cache.GetCached(ctx, cache.StoreSettingsKey); ok {
		var cached models.StoreSettings
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	values, err := s.Repo.Values(ctx, publicSettingKeys...)
	if err != nil {
		return nil, err
	}
	settings := &models.StoreSettings{
		StoreName:     values[models.SettingStoreName],
		StorePhone:    values[models.SettingStorePhone],
		StoreLogoPath: values[models.SettingStoreLogoPath],
	}

	if data, err := json.Marshal(settings); err == nil {
		cache.SetCached(ctx, cache.StoreSettingsKey, data, settingsCacheTTL)
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.StoreSettings, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	values := map[string]string{
		models.SettingStoreName:     strings.TrimSpace(req.StoreName),
		models.SettingStorePhone:    strings.TrimSpace(req.StorePhone),
		models.SettingStoreLogoPath: strings.TrimSpace(req.StoreLogoPath),
	}
	for _, key := range publicSettingKeys {
		if err := s.Repo.Upsert(ctx, key, values[key]); err != nil {
			return nil, err
		}
	}
	cache.InvalidateSettingCaches(ctx)
	zap.L().Info("store settings updated", zap.String("store_name", values[models.SettingStoreName]))
	return s.Get(ctx)
}

// ReceiptStore is the document header. Documents still print when settings cannot be read.
func (s *SettingsService) ReceiptStore(ctx context.Context) receipt.Store {
	store := receipt.Store{Currency: s.Currency, Width: s.Width}
	settings, err := s.Get(ctx)
	if err != nil {
		zap.L().Warn("store settings unavailable for receipt header", zap.Error(err))
		return store
	}
	store.Name = settings.StoreName
	store.Phone = settings.StorePhone
	return store
}

// secret reads a private setting; a missing key is the empty string.
func (s *SettingsService) secret(ctx context.Context, key string) (string, error) {
	setting, err := s.Repo.Get(ctx, key)
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingsService) setSecret(ctx context.Context, key, value string) error {
	return s.Repo.Upsert(ctx, key, value)
}
