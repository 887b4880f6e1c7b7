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
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo crmRepo.ProjectRepository
	clientRepo  crmRepo.ClientRepository
	revalidator crmSvc.Revalidator
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo crmRepo.ProjectRepository,
	clientRepo crmRepo.ClientRepository,
	revalidator crmSvc.Revalidator,
	logger *slog.Logger,
) crmSvc.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		revalidator: revalidator,
		logger:      logger,
	}
}

func (s *projectService) ListProjects(ctx context.Context, userID string, clientID *string) ([]models.Project, error) {
	return s.projectRepo.List(ctx, userID, clientID)
}

func (s *projectService) GetProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, projectID, userID)
}

func (s *projectService) CreateProject(ctx context.Context, req *crmSvc.ProjectRequest) (*models.Project, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	now := time.Now()
	project := &models.Project{
		OwnerID:   req.UserID,
		Status:    models.ProjectStatusPlanning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProjectRequest(project, req)

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "id", project.ID, "client_id", project.ClientID)
	s.revalidator.Revalidate(ctx, "/projects")

	return project, nil
}

func (s *projectService) UpdateProject(ctx context.Context, userID, projectID string, req *crmSvc.ProjectRequest) (*models.Project, error) {
	req.UserID = userID
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	applyProjectRequest(project, req)
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", "id", project.ID)
	s.revalidator.Revalidate(ctx, "/projects/"+project.ID)

	return project, nil
}

func (s *projectService) DeleteProject(ctx context.Context, userID, projectID string) error {
	if err := s.projectRepo.Delete(ctx, projectID, userID); err != nil {
		return err
	}

	s.logger.Info("project deleted", "id", projectID)
	s.revalidator.Revalidate(ctx, "/projects")

	return nil
}

// validate checks fields and that a referenced client belongs to the caller
func (s *projectService) validate(ctx context.Context, req *crmSvc.ProjectRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.ClientID != nil && *req.ClientID == "" {
		req.ClientID = nil
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxClientNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Status, validation.NilOrNotEmpty, validation.In(models.ProjectStatuses...)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return &domain.ValidationError{Field: "endDate", Message: "must not be before startDate"}
	}

	if req.ClientID != nil {
		if _, err := s.clientRepo.GetByID(ctx, *req.ClientID, req.UserID); err != nil {
			return err
		}
	}

	return nil
}

func applyProjectRequest(project *models.Project, req *crmSvc.ProjectRequest) {
	project.ClientID = req.ClientID
	project.Name = req.Name
	project.Description = emptyToNil(req.Description)
	if req.Status != nil {
		project.Status = *req.Status
	}
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate
}
