package services

import (
	"context"
	"strings"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/repositories"
)

type ClientService struct {
	Repo *repositories.ClientRepository
}

func NewClientService(repo *repositories.ClientRepository) *ClientService {
	return &ClientService{Repo: repo}
}

func clientFromRequest(req *models.CreateClientRequest) *models.Client {
	return &models.Client{
		LastName:  strings.TrimSpace(req.LastName),
		FirstName: strings.TrimSpace(req.FirstName),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
	}
}

func (s *ClientService) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	client := clientFromRequest(req)
	if client.LastName == "" {
		return nil, invalid("last name is required")
	}
	if err := s.Repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id int) (*models.Client, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ClientService) ListClients(ctx context.Context, search string) ([]*models.Client, error) {
	return s.Repo.List(ctx, strings.TrimSpace(search))
}

func (s *ClientService) UpdateClient(ctx context.Context, id int, req *models.CreateClientRequest) (*models.Client, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	client := clientFromRequest(req)
	if client.LastName == "" {
		return nil, invalid("last name is required")
	}
	client.ID = id
	if err := s.Repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}
