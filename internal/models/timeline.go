package models

import (
	"fmt"
	"time"
)

// InpatientStay is a hospital admission interval on the timeline.
type InpatientStay struct {
	StayID    int       `json:"stay_id"`
	Admission time.Time `json:"admission"`
	Discharge time.Time `json:"discharge"`
}

// DurationDays returns the length of the stay in whole days.
func (s InpatientStay) DurationDays() int {
	return int(s.Discharge.Sub(s.Admission).Hours() / 24)
}

// MedicationEvent is a dosage change on the timeline.
type MedicationEvent struct {
	Date       time.Time `json:"date"`
	Medication string    `json:"medication"`
	Dosage     string    `json:"dosage"`
}

// Label returns the display text for the event, e.g. "Risperidone 2 mg".
func (m MedicationEvent) Label() string {
	return fmt.Sprintf("%s %s", m.Medication, m.Dosage)
}

// DiagnosisEvent is a diagnosis assignment on the timeline.
type DiagnosisEvent struct {
	Date          time.Time `json:"date"`
	DiagnosisCode string    `json:"diagnosis_code"`
	DiagnosisName string    `json:"diagnosis_name"`
}

// Label returns the display text for the event, e.g. "Dx: Sz".
func (d DiagnosisEvent) Label() string {
	return fmt.Sprintf("Dx: %s", d.DiagnosisCode)
}

// Timeline is the complete clinical course for one patient.
type Timeline struct {
	PatientID      string            `json:"patient_id"`
	IllnessStart   time.Time         `json:"illness_start"`
	IllnessEnd     time.Time         `json:"illness_end"`
	InpatientStays []InpatientStay   `json:"inpatient_stays"`
	Medications    []MedicationEvent `json:"medications"`
	Diagnoses      []DiagnosisEvent  `json:"diagnoses"`
}
