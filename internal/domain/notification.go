package domain

import "time"

const NotificationUnread = "UNREAD"

type Notification struct {
	ID        string    `db:"id"         json:"id"`
	UserID    string    `db:"user_id"    json:"userId"`
	Message   string    `db:"message"    json:"message"`
	IsRead    bool      `db:"is_read"    json:"isRead"`
	Status    string    `db:"status"     json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Appointment struct {
	ID            string `db:"id"              json:"id"`
	DoctorID      string `db:"doctor_id"       json:"doctorId"`
	DoctorUserID  string `db:"doctor_user_id"  json:"doctorUserId"`
	DoctorName    string `db:"doctor_name"     json:"doctorName"`
	PatientID     string `db:"patient_id"      json:"patientId"`
	PatientUserID string `db:"patient_user_id" json:"patientUserId"`
	PatientName   string `db:"patient_name"    json:"patientName"`
	Date          string `db:"date"            json:"appointmentDate"`
	Time          string `db:"time"            json:"appointmentTime"`
	Status        string `db:"status"          json:"status"`
	Reason        string `db:"reason"          json:"reason,omitempty"`
}

// StatusChange describes an appointment status transition pushed to the patient.
type StatusChange struct {
	PatientUserID   string `json:"patientUserId"`
	AppointmentID   string `json:"appointmentId"`
	Status          string `json:"status"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	DoctorName      string `json:"doctorName"`
}
