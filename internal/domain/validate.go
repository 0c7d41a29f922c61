package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so clients see the field they sent.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// recordFor returns a fresh typed record for a collection.
func recordFor(collection string) (any, bool) {
	switch collection {
	case CollectionUsers:
		return &User{}, true
	case CollectionParkingSpots:
		return &ParkingSpot{}, true
	case CollectionReservations:
		return &Reservation{}, true
	case CollectionNotifications:
		return &Notification{}, true
	case CollectionSettings:
		return &Setting{}, true
	case CollectionSystemLogs:
		return &SystemLog{}, true
	case CollectionBackups:
		return &Backup{}, true
	}
	return nil, false
}

// ValidateFields checks the shape of a full document after access has been
// granted. It reports the first offending field.
func ValidateFields(collection string, fields Fields) error {
	rec, ok := recordFor(collection)
	if !ok {
		return ErrUnknownCollection(collection)
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return ErrInvalidField("", "unencodable")
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return ErrInvalidField(te.Field, "type")
		}
		return ErrInvalidField("", "type")
	}
	if err := validatorInstance().Struct(rec); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			if fe.Tag() == "required" || fe.Tag() == "required_if" {
				return ErrMissingField(fieldPath(fe))
			}
			return ErrInvalidField(fieldPath(fe), fe.Tag())
		}
		return ErrInternal(err)
	}
	return nil
}

// fieldPath drops the struct name prefix: "ParkingSpot.location.lat" -> "location.lat".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
