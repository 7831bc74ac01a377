package repositories

import (
	"context"
	"errors"
	"fmt"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BedRepository is the authoritative bed registry. The Postgres
// implementation backs the server; the in-memory one backs tests.
type BedRepository interface {
	Create(ctx context.Context, bed *models.Bed) error
	GetByID(ctx context.Context, id string) (*models.Bed, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Bed, error)
	// GetByIdentifiers returns whatever subset exists; detecting the
	// missing ones is the caller's responsibility.
	GetByIdentifiers(ctx context.Context, identifiers []string) ([]*models.Bed, error)
	ListByRoom(ctx context.Context, roomID string) ([]*models.Bed, error)
	ListAvailable(ctx context.Context, filter models.BedFilter) ([]*models.Bed, error)
	Update(ctx context.Context, bed *models.Bed) error
	Delete(ctx context.Context, id string) error
	// IdentifierExists reports whether any bed in the system holds the
	// identifier, and if so which room it belongs to.
	IdentifierExists(ctx context.Context, identifier string) (bool, string, error)
	// UpdateStatusIf is the per-bed compare-and-swap: the status write only
	// lands if the stored status still equals expected. Returns false when
	// another writer got there first.
	UpdateStatusIf(ctx context.Context, id string, expected, target models.BedStatus, occ *models.OccupantUpdate) (bool, error)
	CountByStatus(ctx context.Context, roomID string) (map[models.BedStatus][]string, error)
}

type PostgresBedRepository struct {
	DB *pgxpool.Pool
}

func NewPostgresBedRepository(db *pgxpool.Pool) *PostgresBedRepository {
	return &PostgresBedRepository{DB: db}
}

const bedColumns = `id, room_id, bed_identifier, bed_number, status, COALESCE(gender, ''),
        monthly_rate, COALESCE(description, ''), COALESCE(notes, ''), COALESCE(maintenance_notes, ''),
        occupant_id, COALESCE(occupant_name, ''), occupied_from, last_cleaned_at, created_at, updated_at`

func scanBed(row pgx.Row) (*models.Bed, error) {
	var b models.Bed
	err := row.Scan(&b.ID, &b.RoomID, &b.BedIdentifier, &b.BedNumber, &b.Status, &b.Gender,
		&b.MonthlyRate, &b.Description, &b.Notes, &b.MaintenanceNotes,
		&b.OccupantID, &b.OccupantName, &b.OccupiedFrom, &b.LastCleanedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresBedRepository) Create(ctx context.Context, bed *models.Bed) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO beds(id, room_id, bed_identifier, bed_number, status, gender, monthly_rate,
                          description, notes, maintenance_notes, occupant_id, occupant_name, occupied_from)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
         RETURNING created_at, updated_at`,
		bed.ID, bed.RoomID, bed.BedIdentifier, bed.BedNumber, bed.Status, bed.Gender, bed.MonthlyRate,
		bed.Description, bed.Notes, bed.MaintenanceNotes, bed.OccupantID, bed.OccupantName, bed.OccupiedFrom,
	).Scan(&bed.CreatedAt, &bed.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.Conflict("bed identifier %q already exists", bed.BedIdentifier)
		}
		return err
	}
	return nil
}

func (r *PostgresBedRepository) GetByID(ctx context.Context, id string) (*models.Bed, error) {
	bed, err := scanBed(r.DB.QueryRow(ctx,
		`SELECT `+bedColumns+` FROM beds WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("bed %q not found", id)
	}
	return bed, err
}

func (r *PostgresBedRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Bed, error) {
	bed, err := scanBed(r.DB.QueryRow(ctx,
		`SELECT `+bedColumns+` FROM beds WHERE bed_identifier=$1`, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("bed %q not found", identifier)
	}
	return bed, err
}

func (r *PostgresBedRepository) GetByIdentifiers(ctx context.Context, identifiers []string) ([]*models.Bed, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx,
		`SELECT `+bedColumns+` FROM beds WHERE bed_identifier = ANY($1)`, identifiers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBeds(rows)
}

func (r *PostgresBedRepository) ListByRoom(ctx context.Context, roomID string) ([]*models.Bed, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+bedColumns+` FROM beds WHERE room_id=$1 ORDER BY bed_number, bed_identifier`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBeds(rows)
}

func (r *PostgresBedRepository) ListAvailable(ctx context.Context, filter models.BedFilter) ([]*models.Bed, error) {
	query := `SELECT ` + bedColumns + ` FROM beds WHERE status=$1`
	args := []interface{}{models.StatusAvailable}

	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		query += fmt.Sprintf(" AND room_id=$%d", len(args))
	}
	if filter.Gender != "" {
		args = append(args, filter.Gender)
		query += fmt.Sprintf(" AND (gender='' OR gender IS NULL OR gender=$%d)", len(args))
	}
	if filter.MinRate != nil {
		args = append(args, *filter.MinRate)
		query += fmt.Sprintf(" AND monthly_rate >= $%d", len(args))
	}
	if filter.MaxRate != nil {
		args = append(args, *filter.MaxRate)
		query += fmt.Sprintf(" AND monthly_rate <= $%d", len(args))
	}
	query += " ORDER BY room_id, bed_number"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBeds(rows)
}

func (r *PostgresBedRepository) Update(ctx context.Context, bed *models.Bed) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE beds
         SET bed_identifier=$1, bed_number=$2, status=$3, gender=$4, monthly_rate=$5,
             description=$6, notes=$7, maintenance_notes=$8, occupant_id=$9, occupant_name=$10,
             occupied_from=$11, last_cleaned_at=$12, updated_at=NOW()
         WHERE id=$13`,
		bed.BedIdentifier, bed.BedNumber, bed.Status, bed.Gender, bed.MonthlyRate,
		bed.Description, bed.Notes, bed.MaintenanceNotes, bed.OccupantID, bed.OccupantName,
		bed.OccupiedFrom, bed.LastCleanedAt, bed.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.Conflict("bed identifier %q already exists", bed.BedIdentifier)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("bed %q not found", bed.ID)
	}
	return nil
}

func (r *PostgresBedRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM beds WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("bed %q not found", id)
	}
	return nil
}

func (r *PostgresBedRepository) IdentifierExists(ctx context.Context, identifier string) (bool, string, error) {
	var roomID string
	err := r.DB.QueryRow(ctx,
		`SELECT room_id FROM beds WHERE bed_identifier=$1`, identifier).Scan(&roomID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, roomID, nil
}

func (r *PostgresBedRepository) UpdateStatusIf(ctx context.Context, id string, expected, target models.BedStatus, occ *models.OccupantUpdate) (bool, error) {
	var tag pgconn.CommandTag
	var err error

	switch {
	case occ == nil:
		tag, err = r.DB.Exec(ctx,
			`UPDATE beds SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
			target, id, expected)
	case occ.Clear:
		tag, err = r.DB.Exec(ctx,
			`UPDATE beds SET status=$1, occupant_id=NULL, occupant_name='', occupied_from=NULL, updated_at=NOW()
             WHERE id=$2 AND status=$3`,
			target, id, expected)
	default:
		tag, err = r.DB.Exec(ctx,
			`UPDATE beds SET status=$1, occupant_id=$2, occupant_name=$3, occupied_from=$4, updated_at=NOW()
             WHERE id=$5 AND status=$6`,
			target, occ.OccupantID, occ.OccupantName, occ.OccupiedFrom, id, expected)
	}
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresBedRepository) CountByStatus(ctx context.Context, roomID string) (map[models.BedStatus][]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, bed_identifier FROM beds WHERE room_id=$1 ORDER BY bed_number, bed_identifier`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.BedStatus][]string)
	for rows.Next() {
		var status models.BedStatus
		var identifier string
		if err := rows.Scan(&status, &identifier); err != nil {
			return nil, err
		}
		counts[status] = append(counts[status], identifier)
	}
	return counts, rows.Err()
}

func collectBeds(rows pgx.Rows) ([]*models.Bed, error) {
	var beds []*models.Bed
	for rows.Next() {
		bed, err := scanBed(rows)
		if err != nil {
			return nil, err
		}
		beds = append(beds, bed)
	}
	return beds, rows.Err()
}
