package domain

const (
	CollectionUsers         = "users"
	CollectionParkingSpots  = "parking_spots"
	CollectionReservations  = "reservations"
	CollectionNotifications = "notifications"
	CollectionSettings      = "settings"
	CollectionSystemLogs    = "system_logs"
	CollectionBackups       = "backups"
)

// Collections lists every collection the store serves.
var Collections = []string{
	CollectionUsers,
	CollectionParkingSpots,
	CollectionReservations,
	CollectionNotifications,
	CollectionSettings,
	CollectionSystemLogs,
	CollectionBackups,
}

func IsKnownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}
