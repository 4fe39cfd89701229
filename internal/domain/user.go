package domain

type Role string

const (
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
	RoleAdmin   Role = "ADMIN"
)

type User struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Role Role   `db:"role"`
}

// Relation связывает доктора и пациента; только чтение.
type Relation struct {
	ID            string `db:"id"`
	DoctorUserID  string `db:"doctor_user_id"`
	DoctorName    string `db:"doctor_name"`
	PatientUserID string `db:"patient_user_id"`
	PatientName   string `db:"patient_name"`
}
