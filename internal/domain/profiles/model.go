package profiles

import "time"

// Gender del sujeto seguido.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func (g Gender) valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

// Profile identifica al sujeto al que pertenecen los eventos.
// Para el core de edición es de solo lectura.
type Profile struct {
	ID          string
	OwnerUserID string

	Name     string
	Nickname string
	Gender   Gender

	DateOfBirth *time.Time

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
