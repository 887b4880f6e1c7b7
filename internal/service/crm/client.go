package crm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/crm"
	crmRepo "folio/internal/domain/repositories/crm"
	crmSvc "folio/internal/domain/services/crm"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// clientService implements the ClientService interface
type clientService struct {
	clientRepo  crmRepo.ClientRepository
	revalidator crmSvc.Revalidator
	logger      *slog.Logger
}

// NewClientService creates a new client service
func NewClientService(clientRepo crmRepo.ClientRepository, revalidator crmSvc.Revalidator, logger *slog.Logger) crmSvc.ClientService {
	return &clientService{
		clientRepo:  clientRepo,
		revalidator: revalidator,
		logger:      logger,
	}
}

func (s *clientService) ListClients(ctx context.Context, userID string) ([]models.Client, error) {
	return s.clientRepo.List(ctx, userID)
}

func (s *clientService) GetClient(ctx context.Context, userID, clientID string) (*models.Client, error) {
	return s.clientRepo.GetByID(ctx, clientID, userID)
}

func (s *clientService) CreateClient(ctx context.Context, req *crmSvc.ClientRequest) (*models.Client, error) {
	if err := validateClientRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	client := &models.Client{
		OwnerID:   req.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyClientRequest(client, req)

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created", "id", client.ID)
	s.revalidator.Revalidate(ctx, "/clients")

	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, userID, clientID string, req *crmSvc.ClientRequest) (*models.Client, error) {
	if err := validateClientRequest(req); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, clientID, userID)
	if err != nil {
		return nil, err
	}

	applyClientRequest(client, req)
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client updated", "id", client.ID)
	s.revalidator.Revalidate(ctx, "/clients/"+client.ID)

	return client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, userID, clientID string) error {
	if err := s.clientRepo.Delete(ctx, clientID, userID); err != nil {
		return err
	}

	s.logger.Info("client deleted", "id", clientID)
	s.revalidator.Revalidate(ctx, "/clients")

	return nil
}

func validateClientRequest(req *crmSvc.ClientRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxClientNameLength)),
		validation.Field(&req.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&req.Company, validation.Length(0, config.MaxClientNameLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func applyClientRequest(client *models.Client, req *crmSvc.ClientRequest) {
	client.Name = req.Name
	client.Email = emptyToNil(req.Email)
	client.Phone = emptyToNil(req.Phone)
	client.Company = emptyToNil(req.Company)
	client.Notes = emptyToNil(req.Notes)
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
