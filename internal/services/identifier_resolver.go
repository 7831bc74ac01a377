package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
)

// simpleBedPattern is the preferred identifier convention: bed1, bed2, ...
var simpleBedPattern = regexp.MustCompile(`^bed\d+$`)

// numericSuffix pulls the trailing digits off an identifier, if any.
var numericSuffix = regexp.MustCompile(`(\d+)$`)

// maxCollisionAttempts bounds the suffix retry loop so identifier
// generation always terminates.
const maxCollisionAttempts = 50

// IdentifierResolver turns arbitrary layout-supplied bed identifiers into
// registry-safe ones and matches layout positions back to registry beds.
// It never relies on a single canonical format: layouts accumulate simple
// (bed3), generated and legacy dashed identifiers over time.
type IdentifierResolver struct {
	Beds repositories.BedRepository
}

func NewIdentifierResolver(beds repositories.BedRepository) *IdentifierResolver {
	return &IdentifierResolver{Beds: beds}
}

// NormalizePositions rewrites position identifiers that do not follow the
// bed<N> convention using a per-room sequential counter. A rewrite is
// skipped when the candidate identifier already belongs to a bed in a
// different room; the original complex identifier is kept instead of
// stealing another room's name. Returns the normalized positions and
// non-fatal warnings.
func (r *IdentifierResolver) NormalizePositions(ctx context.Context, roomID string, positions []models.LayoutPosition) ([]models.LayoutPosition, []string, error) {
	normalized := make([]models.LayoutPosition, len(positions))
	copy(normalized, positions)

	taken := make(map[string]bool, len(positions))
	for _, pos := range normalized {
		if simpleBedPattern.MatchString(pos.ID) {
			taken[pos.ID] = true
		}
	}

	var warnings []string
	counter := 1
	for i := range normalized {
		if simpleBedPattern.MatchString(normalized[i].ID) {
			continue
		}

		candidate := ""
		for {
			candidate = "bed" + strconv.Itoa(counter)
			counter++
			if !taken[candidate] {
				break
			}
		}

		exists, otherRoom, err := r.Beds.IdentifierExists(ctx, candidate)
		if err != nil {
			return nil, nil, err
		}
		if exists && otherRoom != roomID {
			// The simple form is owned by another room's bed; keep the
			// complex identifier rather than colliding cross-room.
			warnings = append(warnings, fmt.Sprintf(
				"position %q kept its identifier: %q belongs to another room", normalized[i].ID, candidate))
			continue
		}

		warnings = append(warnings, fmt.Sprintf(
			"position %q renamed to %q", normalized[i].ID, candidate))
		normalized[i].ID = candidate
		taken[candidate] = true
	}

	return normalized, warnings, nil
}

// CreateWithUniqueIdentifier inserts bed, rewriting its identifier to
// <roomNumber>-bed<sequence> (plus a numeric suffix if needed) whenever
// the desired identifier already belongs to another bed. Existence is
// re-checked on every attempt and an insert conflict moves to the next
// candidate, so a concurrent writer claiming the same identifier cannot
// wedge the loop.
func (r *IdentifierResolver) CreateWithUniqueIdentifier(ctx context.Context, room *models.Room, bed *models.Bed) error {
	desired := bed.BedIdentifier
	base := ""

	for attempt := 0; attempt < maxCollisionAttempts; attempt++ {
		candidate := desired
		if attempt > 0 {
			if base == "" {
				beds, err := r.Beds.ListByRoom(ctx, room.ID)
				if err != nil {
					return err
				}
				base = fmt.Sprintf("%s-bed%d", room.RoomNumber, len(beds)+1)
			}
			candidate = base
			if attempt > 1 {
				candidate = fmt.Sprintf("%s-%d", base, attempt-1)
			}
		}

		exists, _, err := r.Beds.IdentifierExists(ctx, candidate)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		bed.BedIdentifier = candidate
		err = r.Beds.Create(ctx, bed)
		if err == nil {
			return nil
		}
		if !apperrors.IsConflict(err) {
			return err
		}
		// Lost the race between the existence check and the insert;
		// fall through to the next candidate.
	}

	return apperrors.Conflict("could not find a free identifier for bed %q after %d attempts", desired, maxCollisionAttempts)
}

// MatchBed finds the registry bed a layout position refers to, trying a
// cascade of strategies in order. No match is not an error; the caller
// decides what an unmatched position means.
func (r *IdentifierResolver) MatchBed(pos models.LayoutPosition, beds []*models.Bed) (*models.Bed, bool) {
	// 1. exact match on internal id
	for _, bed := range beds {
		if bed.ID == pos.ID {
			return bed, true
		}
	}
	// 2. internal id embedded in the position id (editor-generated ids
	//    often append the id of the bed they were created from)
	for _, bed := range beds {
		if bed.ID != "" && strings.Contains(pos.ID, bed.ID) {
			return bed, true
		}
	}
	// 3. exact match on bed identifier
	for _, bed := range beds {
		if bed.BedIdentifier == pos.ID {
			return bed, true
		}
	}
	// 4. collision-renamed identifiers keep the original as a dashed suffix
	for _, bed := range beds {
		if strings.HasSuffix(bed.BedIdentifier, "-"+pos.ID) {
			return bed, true
		}
	}
	// 5. numeric suffix of the position id equals the display number
	if m := numericSuffix.FindString(pos.ID); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			for _, bed := range beds {
				if bed.BedNumber == n {
					return bed, true
				}
			}
		}
	}
	return nil, false
}

// PositionNumber extracts the display number hint from a position
// identifier; 0 when it has no trailing digits.
func PositionNumber(id string) int {
	m := numericSuffix.FindString(id)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
