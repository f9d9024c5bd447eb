package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/auric/jewelry-be/internal/apperr"
	"github.com/auric/jewelry-be/internal/models"
)

var validDesignStatuses = map[string]bool{
	models.DesignStatusPending:    true,
	models.DesignStatusInProgress: true,
	models.DesignStatusCompleted:  true,
	models.DesignStatusRejected:   true,
}

// DesignServiceProvider defines the interface for custom-design services.
type DesignServiceProvider interface {
	CreateDesign(userID int64, d models.Design) (models.Design, error)
	GetUserDesigns(userID int64) ([]models.Design, error)
	GetDesign(id int64, requester models.User) (models.Design, error)
	GetAllDesigns() ([]models.Design, error)
	UpdateDesignStatus(id int64, status string) (models.Design, error)
}

// DesignService provides business logic for custom design requests.
type DesignService struct {
	db *sql.DB
}

// NewDesignService creates a new DesignService.
func NewDesignService(db *sql.DB) *DesignService {
	return &DesignService{db: db}
}

// CreateDesign submits a new design request for a user. New requests always
// start in the pending status.
func (s *DesignService) CreateDesign(userID int64, d models.Design) (models.Design, error) {
	res, err := s.db.Exec(
		"INSERT INTO custom_designs (user_id, design_name, material_preference, approximate_weight, description, reference_image, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		userID, d.DesignName, d.MaterialPreference, d.ApproximateWeight, d.Description, d.ReferenceImage, models.DesignStatusPending,
	)
	if err != nil {
		return models.Design{}, fmt.Errorf("failed to insert design: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Design{}, err
	}

	log.Info().Int64("user_id", userID).Str("design_name", d.DesignName).Msg("Custom design submitted")
	return s.getByID(id)
}

// GetUserDesigns lists a user's own design requests, newest first.
func (s *DesignService) GetUserDesigns(userID int64) ([]models.Design, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, design_name, material_preference, approximate_weight, description, reference_image, status, created_at FROM custom_designs WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query designs for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectDesigns(rows, false)
}

// GetDesign retrieves a single design. A user may only read their own
// designs; admins may read all of them.
func (s *DesignService) GetDesign(id int64, requester models.User) (models.Design, error) {
	design, err := s.getByID(id)
	if err != nil {
		return models.Design{}, err
	}

	if requester.Role != models.RoleAdmin && design.UserID != requester.ID {
		return models.Design{}, apperr.Forbidden("not authorized to access this design")
	}
	return design, nil
}

// GetAllDesigns lists every design request with the owning account joined
// in. Admin triage view.
func (s *DesignService) GetAllDesigns() ([]models.Design, error) {
	rows, err := s.db.Query(
		`SELECT cd.id, cd.user_id, cd.design_name, cd.material_preference, cd.approximate_weight, cd.description, cd.reference_image, cd.status, cd.created_at, u.name, u.email
		FROM custom_designs cd
		JOIN users u ON cd.user_id = u.id
		ORDER BY cd.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query all designs: %w", err)
	}
	defer rows.Close()

	return collectDesigns(rows, true)
}

// UpdateDesignStatus moves a design through the triage flow. Only the
// allow-listed statuses are accepted.
func (s *DesignService) UpdateDesignStatus(id int64, status string) (models.Design, error) {
	if !validDesignStatuses[status] {
		return models.Design{}, apperr.Validation("invalid status value")
	}

	if _, err := s.getByID(id); err != nil {
		return models.Design{}, err
	}

	if _, err := s.db.Exec("UPDATE custom_designs SET status = ? WHERE id = ?", status, id); err != nil {
		return models.Design{}, fmt.Errorf("failed to update design %d status: %w", id, err)
	}

	log.Info().Int64("design_id", id).Str("status", status).Msg("Design status updated")
	return s.getByID(id)
}

func (s *DesignService) getByID(id int64) (models.Design, error) {
	row := s.db.QueryRow(
		"SELECT id, user_id, design_name, material_preference, approximate_weight, description, reference_image, status, created_at FROM custom_designs WHERE id = ?",
		id,
	)
	d, err := scanDesign(row, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Design{}, apperr.NotFound("design not found")
		}
		return models.Design{}, err
	}
	return d, nil
}

func collectDesigns(rows *sql.Rows, withUser bool) ([]models.Design, error) {
	designs := []models.Design{}
	for rows.Next() {
		d, err := scanDesign(rows, withUser)
		if err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

func scanDesign(row rowScanner, withUser bool) (models.Design, error) {
	var d models.Design
	var material, description, image sql.NullString
	var weight sql.NullFloat64

	dest := []any{&d.ID, &d.UserID, &d.DesignName, &material, &weight, &description, &image, &d.Status, &d.CreatedAt}
	if withUser {
		dest = append(dest, &d.UserName, &d.UserEmail)
	}
	if err := row.Scan(dest...); err != nil {
		return models.Design{}, err
	}

	d.MaterialPreference = material.String
	d.ApproximateWeight = weight.Float64
	d.Description = description.String
	d.ReferenceImage = image.String
	return d, nil
}
