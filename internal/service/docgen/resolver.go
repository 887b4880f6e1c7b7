package docgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"folio/internal/domain"
	crmModels "folio/internal/domain/models/crm"
	models "folio/internal/domain/models/docgen"
	crmRepo "folio/internal/domain/repositories/crm"
	docgenSvc "folio/internal/domain/services/docgen"
)

const (
	dateLayout          = "January 2, 2006"
	defaultBusinessName = "Your Business"
)

// Business defaults present in every mapping
var businessDefaults = models.Variables{
	"payment_terms": models.Text("30 days"),
	"late_fee":      models.Text("1.5% per month"),
	"currency":      models.Text("$"),
	"tax_rate":      models.Text("0%"),
}

// variableResolver implements the VariableResolver interface
type variableResolver struct {
	userRepo    crmRepo.UserRepository
	clientRepo  crmRepo.ClientRepository
	projectRepo crmRepo.ProjectRepository
	now         func() time.Time
	logger      *slog.Logger
}

// NewVariableResolver creates a resolver that reads the server's local clock
func NewVariableResolver(
	userRepo crmRepo.UserRepository,
	clientRepo crmRepo.ClientRepository,
	projectRepo crmRepo.ProjectRepository,
	logger *slog.Logger,
) docgenSvc.VariableResolver {
	return newVariableResolver(userRepo, clientRepo, projectRepo, time.Now, logger)
}

func newVariableResolver(
	userRepo crmRepo.UserRepository,
	clientRepo crmRepo.ClientRepository,
	projectRepo crmRepo.ProjectRepository,
	now func() time.Time,
	logger *slog.Logger,
) *variableResolver {
	return &variableResolver{
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		now:         now,
		logger:      logger,
	}
}

// Resolve builds the auto-populated mapping. Client and project references
// that don't resolve for the caller are omitted; other storage errors fail.
func (r *variableResolver) Resolve(ctx context.Context, userID string, clientID, projectID *string) (models.Variables, error) {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no profile for user %s", domain.ErrUnauthorized, userID)
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	vars := systemVariables(r.now())
	vars.Merge(userVariables(user))
	vars.Merge(businessDefaults)

	var project *crmModels.Project
	if projectID != nil {
		project, err = r.projectRepo.GetByID(ctx, *projectID, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("resolve project: %w", err)
		}
		if project == nil {
			r.logger.Debug("project not resolvable, omitting", "project_id", *projectID)
		}
	}

	// An explicit client wins over the project's client
	effectiveClientID := clientID
	if effectiveClientID == nil && project != nil {
		effectiveClientID = project.ClientID
	}

	if effectiveClientID != nil {
		client, err := r.clientRepo.GetByID(ctx, *effectiveClientID, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("resolve client: %w", err)
		}
		if client != nil {
			vars.Merge(clientVariables(client))
		} else {
			r.logger.Debug("client not resolvable, omitting", "client_id", *effectiveClientID)
		}
	}

	if project != nil {
		vars.Merge(projectVariables(project))
	}

	return vars, nil
}

func systemVariables(now time.Time) models.Variables {
	return models.Variables{
		"current_date":  models.Text(now.Format(dateLayout)),
		"current_year":  models.Text(now.Format("2006")),
		"current_month": models.Text(now.Format("January")),
		"next_week":     models.Text(now.AddDate(0, 0, 7).Format(dateLayout)),
		"next_month":    models.Text(now.AddDate(0, 1, 0).Format(dateLayout)),
		"due_date":      models.Text(now.AddDate(0, 0, 30).Format(dateLayout)),
		"time_greeting": models.Text(greeting(now.Hour())),
	}
}

func greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

func userVariables(user *crmModels.User) models.Variables {
	name := user.DisplayName()

	business := defaultBusinessName
	switch {
	case user.BusinessName != nil && *user.BusinessName != "":
		business = *user.BusinessName
	case name != "":
		business = name
	}

	return models.Variables{
		"my_name":       models.Text(name),
		"your_name":     models.Text(name),
		"my_email":      models.Text(user.Email),
		"your_email":    models.Text(user.Email),
		"business_name": models.Text(business),
	}
}

func clientVariables(client *crmModels.Client) models.Variables {
	firstName := client.Name
	if fields := strings.Fields(client.Name); len(fields) > 0 {
		firstName = fields[0]
	}

	company := client.Name
	if client.Company != nil && *client.Company != "" {
		company = *client.Company
	}

	return models.Variables{
		"client_name":       models.Text(client.Name),
		"client_email":      models.Text(deref(client.Email)),
		"client_phone":      models.Text(deref(client.Phone)),
		"client_company":    models.Text(deref(client.Company)),
		"company_name":      models.Text(company),
		"client_notes":      models.Text(deref(client.Notes)),
		"client_first_name": models.Text(firstName),
		"dear_client":       models.Text("Dear " + client.Name),
		"dear_firstname":    models.Text("Dear " + firstName),
	}
}

func projectVariables(project *crmModels.Project) models.Variables {
	vars := models.Variables{
		"project_name":        models.Text(project.Name),
		"project_description": models.Text(deref(project.Description)),
		"project_status":      models.Text(string(project.Status)),
		"project_start_date":  models.Text(formatDate(project.StartDate)),
		"project_end_date":    models.Text(formatDate(project.EndDate)),
	}

	if project.StartDate != nil && project.EndDate != nil {
		days, weeks := projectDuration(*project.StartDate, *project.EndDate)
		vars["project_duration"] = models.Text(fmt.Sprintf("%d days", days))
		vars["project_duration_weeks"] = models.Text(fmt.Sprintf("%d weeks", weeks))
	}

	return vars
}

// projectDuration rounds partial days and weeks up
func projectDuration(start, end time.Time) (days, weeks int) {
	days = int(math.Ceil(end.Sub(start).Hours() / 24))
	weeks = int(math.Ceil(float64(days) / 7))
	return days, weeks
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
