// internal/store/postgres/directory.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

// Directory reads job, organization and candidate records.
type Directory struct {
	db *sql.DB
}

func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	err := d.db.QueryRowContext(ctx,
		`SELECT id, title, organization_id FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Title, &j.OrganizationID)
	if err != nil {
		return nil, lookupErr("job", err)
	}
	return &j, nil
}

func (d *Directory) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var o models.Organization
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, contact_email FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.ContactEmail)
	if err != nil {
		return nil, lookupErr("organization", err)
	}
	return &o, nil
}

func (d *Directory) GetCandidateProfile(ctx context.Context, id string) (*models.CandidateProfile, error) {
	var c models.CandidateProfile
	err := d.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, about, phone, location, title,
		       skills, languages, experiences, educations
		FROM candidates WHERE id = $1`, id,
	).Scan(&c.ID, &c.DisplayName, &c.Email, &c.About, &c.Phone, &c.Location, &c.Title,
		pq.Array(&c.Skills), pq.Array(&c.Languages), pq.Array(&c.Experiences), pq.Array(&c.Educations))
	if err != nil {
		return nil, lookupErr("candidate", err)
	}
	return &c, nil
}

func lookupErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("get %s: %w", what, err)
}
