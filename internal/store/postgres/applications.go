// internal/store/postgres/applications.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

const applicationColumns = `id, job_id, candidate_id, organization_id, status, created_at, updated_at,
	reject_reason, reject_date, accept_date, accept_time, accept_details,
	accepted_at, approved_at, cover_letter, resume_ref`

func scanApplication(row scanner) (*models.Application, error) {
	var (
		app                                   models.Application
		status                                string
		rejectReason, acceptDate, acceptTime  sql.NullString
		acceptDetails, coverLetter, resumeRef sql.NullString
		rejectDate, acceptedAt, approvedAt    sql.NullTime
	)
	err := row.Scan(
		&app.ID, &app.JobID, &app.CandidateID, &app.OrganizationID, &status, &app.CreatedAt, &app.UpdatedAt,
		&rejectReason, &rejectDate, &acceptDate, &acceptTime, &acceptDetails,
		&acceptedAt, &approvedAt, &coverLetter, &resumeRef,
	)
	if err != nil {
		return nil, err
	}

	app.Status, err = models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", app.ID, err)
	}
	app.CreatedAt = app.CreatedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()
	app.RejectReason = rejectReason.String
	app.RejectDate = timePtr(rejectDate)
	app.AcceptDate = acceptDate.String
	app.AcceptTime = acceptTime.String
	app.AcceptDetails = acceptDetails.String
	app.AcceptedAt = timePtr(acceptedAt)
	app.ApprovedAt = timePtr(approvedAt)
	app.CoverLetter = coverLetter.String
	app.ResumeRef = resumeRef.String
	return &app, nil
}

func (s *Store) CreateApplication(ctx context.Context, app *models.Application, outbox []models.OutboxEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO applications (
				id, job_id, candidate_id, organization_id, status, created_at, updated_at,
				cover_letter, resume_ref
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			app.ID, app.JobID, app.CandidateID, app.OrganizationID, string(app.Status),
			app.CreatedAt, app.UpdatedAt, nullString(app.CoverLetter), nullString(app.ResumeRef),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicate
			}
			return fmt.Errorf("insert application: %w", err)
		}
		return insertOutbox(ctx, tx, outbox, app.CreatedAt)
	})
}

func (s *Store) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *Store) CompareAndSetStatus(ctx context.Context, next *models.Application, expected models.Status, outbox []models.OutboxEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE applications SET
				status = $2, updated_at = $3,
				reject_reason = $4, reject_date = $5,
				accept_date = $6, accept_time = $7, accept_details = $8,
				accepted_at = $9, approved_at = $10
			WHERE id = $1 AND status = $11`,
			next.ID, string(next.Status), next.UpdatedAt,
			nullString(next.RejectReason), nullTime(next.RejectDate),
			nullString(next.AcceptDate), nullString(next.AcceptTime), nullString(next.AcceptDetails),
			nullTime(next.AcceptedAt), nullTime(next.ApprovedAt),
			string(expected),
		)
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		if n == 0 {
			return store.ErrStatusConflict
		}
		return insertOutbox(ctx, tx, outbox, next.UpdatedAt)
	})
}

func (s *Store) ListApplications(ctx context.Context, filter models.ListFilter) ([]models.Application, error) {
	filter = filter.Normalize()

	var (
		where []string
		args  []interface{}
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("candidate_id", filter.CandidateID)
	add("organization_id", filter.OrganizationID)
	add("job_id", filter.JobID)
	add("status", string(filter.Status))

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

func (s *Store) CountApplicationsByCandidate(ctx context.Context, candidateID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE candidate_id = $1`, candidateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}
