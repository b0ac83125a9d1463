package crew

import "time"

// Crew maps to the crew_member table. A crew member registers once with the
// hospital they operate out of and authenticates per shift.
type Crew struct {
	CrewName     string    `db:"crew_name" json:"crew_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	HospitalName string    `db:"hospital_name" json:"hospital_name"`
	HospitalID   string    `db:"hospital_id" json:"hospital_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
