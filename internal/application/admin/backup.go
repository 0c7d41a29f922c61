package admin

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/raknago/parking-backend/internal/application/audit"
	"github.com/raknago/parking-backend/internal/domain"
)

type BackupResult struct {
	ID       string
	Backup   domain.Backup
	Location string // empty when no uploader is configured
}

// Backup counts users, parking spots and reservations and records them
// in the backups collection.
func (s *Service) Backup(ctx context.Context, createdBy string) (BackupResult, error) {
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		createdBy = "system"
	}

	b := domain.Backup{Timestamp: s.now().UTC(), CreatedBy: createdBy}
	var err error
	if b.Users, err = s.store.Count(ctx, domain.CollectionUsers); err != nil {
		return BackupResult{}, err
	}
	if b.ParkingSpots, err = s.store.Count(ctx, domain.CollectionParkingSpots); err != nil {
		return BackupResult{}, err
	}
	if b.Bookings, err = s.store.Count(ctx, domain.CollectionReservations); err != nil {
		return BackupResult{}, err
	}

	res := BackupResult{ID: s.newID(), Backup: b}
	if _, err := s.store.Create(ctx, domain.Document{
		Collection: domain.CollectionBackups,
		ID:         res.ID,
		Fields:     b.Fields(),
	}); err != nil {
		return BackupResult{}, err
	}

	if s.uploader != nil {
		body, err := json.Marshal(b)
		if err != nil {
			return BackupResult{}, domain.ErrInternal(err)
		}
		key := "backups/" + b.Timestamp.Format("20060102T150405Z") + ".json"
		if res.Location, err = s.uploader.Upload(ctx, key, body); err != nil {
			return BackupResult{}, err
		}
	}

	s.log.Info().
		Int64("users", b.Users).
		Int64("parking_spots", b.ParkingSpots).
		Int64("bookings", b.Bookings).
		Str("location", res.Location).
		Msg("backup recorded")
	s.logAction(ctx, audit.AdminBackupTaken, createdBy, domain.CollectionBackups, res.ID, nil)
	return res, nil
}
