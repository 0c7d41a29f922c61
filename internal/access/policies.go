package access

import (
	"github.com/raknago/parking-backend/internal/domain"
)

var policies = map[string]policy{
	domain.CollectionUsers:         usersPolicy,
	domain.CollectionParkingSpots:  parkingSpotsPolicy,
	domain.CollectionReservations:  reservationsPolicy,
	domain.CollectionNotifications: notificationsPolicy,
	domain.CollectionSettings:      settingsPolicy,
	domain.CollectionSystemLogs:    systemLogsPolicy,
	domain.CollectionBackups:       backupsPolicy,
}

var usersPolicy = policy{
	read: func(f facts) bool {
		return f.isOwner(f.req.ID) || f.isAdmin()
	},
	create: func(f facts) bool {
		return f.isAuthenticated() &&
			f.id.UID == f.req.ID &&
			f.proposedHas(typed{
				"email":           domain.ValueString,
				"name":            domain.ValueString,
				"isEmailVerified": domain.ValueBool,
			}, "email", "name", "createdAt", "updatedAt", "isEmailVerified")
	},
	update: func(f facts) bool {
		if f.isOwner(f.req.ID) && !f.affectsAny("email", "createdAt") && f.proposedUpdatedAtIsTimestamp() {
			return true
		}
		return f.isAdmin() && f.proposedUpdatedAtIsTimestamp()
	},
	delete: adminOnly,
}

// Any signed-in user may change or remove a spot. Kept permissive on purpose.
var parkingSpotsPolicy = policy{
	read: allow,
	create: func(f facts) bool {
		return f.isAdmin() || f.hasCompletedProfile()
	},
	update: func(f facts) bool { return f.isAdmin() || f.isAuthenticated() },
	delete: func(f facts) bool { return f.isAdmin() || f.isAuthenticated() },
}

func ownsReservation(f facts) bool {
	return f.isAdmin() || (f.isAuthenticated() && f.existingEquals("userId", f.id.UID))
}

var reservationsPolicy = policy{
	read: ownsReservation,
	create: func(f facts) bool {
		if f.isAdmin() {
			return true
		}
		uid, ok := f.proposed().String("userId")
		return f.isAuthenticated() && ok && uid == f.id.UID && f.hasCompletedProfile()
	},
	update: ownsReservation,
	delete: ownsReservation,
}

var notificationsPolicy = policy{
	read: func(f facts) bool {
		if f.isAdmin() {
			return true
		}
		return f.isAuthenticated() &&
			(f.existingEquals("recipientType", domain.RecipientAll) || f.existingEquals("recipientId", f.id.UID))
	},
	create: func(f facts) bool {
		return f.isAdmin() && f.proposedHas(typed{
			"title":         domain.ValueString,
			"message":       domain.ValueString,
			"type":          domain.ValueString,
			"recipientType": domain.ValueString,
			"sentBy":        domain.ValueString,
			"sentAt":        domain.ValueTimestamp,
			"createdAt":     domain.ValueTimestamp,
			"updatedAt":     domain.ValueTimestamp,
		}, "title", "message", "type", "recipientType", "sentBy", "sentAt", "createdAt", "updatedAt")
	},
	update: func(f facts) bool {
		if f.isAdmin() {
			return true
		}
		return f.isAuthenticated() && f.affectsOnly("readBy", "updatedAt") && f.proposedUpdatedAtIsTimestamp()
	},
	delete: adminOnly,
}

var settingsPolicy = policy{
	read:   adminOnly,
	create: adminOnly,
	update: func(f facts) bool {
		return f.isAdmin() && f.proposedUpdatedAtIsTimestamp()
	},
	delete: adminOnly,
}

var systemLogsPolicy = policy{
	read: adminOnly,
	create: func(f facts) bool {
		return f.isAdmin() && f.proposedHas(typed{
			"action":    domain.ValueString,
			"timestamp": domain.ValueTimestamp,
		}, "action", "timestamp")
	},
	update: adminOnly,
	delete: adminOnly,
}

var backupsPolicy = policy{
	read: adminOnly,
	create: func(f facts) bool {
		return f.isAdmin() && f.proposedHas(typed{
			"timestamp": domain.ValueTimestamp,
			"createdBy": domain.ValueString,
		}, "timestamp", "createdBy")
	},
	update: adminOnly,
	delete: adminOnly,
}
