package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
)

func (s *Store) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	if err := s.db.SelectContext(ctx, &locations, `SELECT id, name, created_at FROM locations ORDER BY name`); err != nil {
		return nil, translate(err, "ListLocations")
	}
	return locations, nil
}

func (s *Store) GetLocation(ctx context.Context, id string) (models.Location, error) {
	var loc models.Location
	err := s.db.GetContext(ctx, &loc, `SELECT id, name, created_at FROM locations WHERE id = ?`, id)
	return loc, translate(err, "GetLocation")
}

func (s *Store) FindLocationByName(ctx context.Context, name string) (models.Location, error) {
	var loc models.Location
	err := s.db.GetContext(ctx, &loc, `SELECT id, name, created_at FROM locations WHERE name = ?`, name)
	return loc, translate(err, "FindLocationByName")
}

func (s *Store) SaveLocation(ctx context.Context, location models.Location) error {
	location.CreatedAt = location.CreatedAt.UTC()
	const q = `
		INSERT INTO locations (id, name, created_at) VALUES (:id, :name, :created_at)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	_, err := s.db.NamedExecContext(ctx, q, location)
	return translate(err, "SaveLocation")
}

func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE location_id = ?`, id); err != nil {
		return translate(err, "DeleteLocationLeads")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return translate(err, "DeleteLocation")
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	return tx.Commit()
}

const leadSelect = `
	SELECT l.id, l.name, l.location_id, COALESCE(loc.name, '') AS location_name,
		l.indiamart_link, l.deal_status, l.comments, l.address, l.created_at
	FROM leads l
	LEFT JOIN locations loc ON loc.id = l.location_id
`

func (s *Store) ListLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	q := leadSelect + ` WHERE 1 = 1`
	var args []interface{}
	if filter.LocationID != "" {
		q += ` AND l.location_id = ?`
		args = append(args, filter.LocationID)
	}
	if len(filter.DealStatuses) > 0 {
		q += ` AND l.deal_status IN (?)`
		args = append(args, filter.DealStatuses)
	}
	q += ` ORDER BY l.created_at DESC`

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, fmt.Errorf("build lead query: %w", err)
	}
	leads := []models.Lead{}
	if err := s.db.SelectContext(ctx, &leads, s.db.Rebind(q), args...); err != nil {
		return nil, translate(err, "ListLeads")
	}
	return leads, nil
}

func (s *Store) GetLead(ctx context.Context, id string) (models.Lead, error) {
	var lead models.Lead
	err := s.db.GetContext(ctx, &lead, leadSelect+` WHERE l.id = ?`, id)
	return lead, translate(err, "GetLead")
}

func (s *Store) SaveLead(ctx context.Context, lead models.Lead) error {
	lead.CreatedAt = lead.CreatedAt.UTC()
	const q = `
		INSERT INTO leads (id, name, location_id, indiamart_link, deal_status, comments, address, created_at)
		VALUES (:id, :name, :location_id, :indiamart_link, :deal_status, :comments, :address, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location_id = excluded.location_id,
			indiamart_link = excluded.indiamart_link,
			deal_status = excluded.deal_status,
			comments = excluded.comments,
			address = excluded.address
	`
	_, err := s.db.NamedExecContext(ctx, q, lead)
	return translate(err, "SaveLead")
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return translate(err, "DeleteLead")
	}
	return mustAffect(res)
}
