package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/receipt"
	"repairshop-backend/internal/repositories"
)

type UsedPhoneService struct {
	Repo     *repositories.UsedPhoneRepository
	Settings *SettingsService
}

func NewUsedPhoneService(repo *repositories.UsedPhoneRepository, settings *SettingsService) *UsedPhoneService {
	return &UsedPhoneService{Repo: repo, Settings: settings}
}

func usedPhoneFromRequest(req *models.CreateUsedPhoneRequest) (*models.UsedPhonePurchase, error) {
	u := &models.UsedPhonePurchase{
		PhoneName:       strings.TrimSpace(req.PhoneName),
		PhoneBrand:      strings.TrimSpace(req.PhoneBrand),
		IMEI:            strings.TrimSpace(req.IMEI),
		SellerLastName:  strings.TrimSpace(req.SellerLastName),
		SellerFirstName: strings.TrimSpace(req.SellerFirstName),
		SellerIDType:    strings.TrimSpace(req.SellerIDType),
		SellerIDNumber:  strings.TrimSpace(req.SellerIDNumber),
		SellerIDPlace:   strings.TrimSpace(req.SellerIDPlace),
		SellerIDDate:    strings.TrimSpace(req.SellerIDDate),
		SellerPhone:     strings.TrimSpace(req.SellerPhone),
		SellerAddress:   strings.TrimSpace(req.SellerAddress),
	}
	if u.PhoneName == "" || u.PhoneBrand == "" || u.SellerLastName == "" || u.SellerIDNumber == "" {
		return nil, invalid("phone name, brand, seller last name and seller ID number are required")
	}
	if u.SellerIDType == "" {
		u.SellerIDType = models.DefaultSellerIDType
	}
	date, err := parseDay(req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	u.PurchaseDate = date
	return u, nil
}

func (s *UsedPhoneService) Create(ctx context.Context, req *models.CreateUsedPhoneRequest) (*models.UsedPhonePurchase, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	u, err := usedPhoneFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	zap.L().Info("used phone purchase recorded", zap.Int("id", u.ID), zap.String("phone", u.PhoneBrand+" "+u.PhoneName))
	return u, nil
}

func (s *UsedPhoneService) List(ctx context.Context, search string) ([]*models.UsedPhonePurchase, error) {
	return s.Repo.List(ctx, strings.TrimSpace(search))
}

func (s *UsedPhoneService) Get(ctx context.Context, id int) (*models.UsedPhonePurchase, error) {
	return s.Repo.Get(ctx, id)
}

func (s *UsedPhoneService) Delete(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("used phone purchase deleted", zap.Int("id", id))
	return nil
}

func (s *UsedPhoneService) Sheet(ctx context.Context, id int) (string, error) {
	u, err := s.Repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return receipt.UsedPhoneSheet(s.Settings.ReceiptStore(ctx), u), nil
}
