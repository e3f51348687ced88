package services

import (
	"fmt"
	"time"

	"chartline/internal/models"
)

// TimelineService assembles the clinical course shown on the dashboard.
// It is pure data assembly; rendering happens in the front-end.
type TimelineService struct{}

// NewTimelineService creates a TimelineService.
func NewTimelineService() *TimelineService {
	return &TimelineService{}
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err) // sample data literals below are fixed
	}
	return t
}

// SampleTimeline returns the built-in demonstration dataset: a fifteen
// year course of illness with six inpatient stays, a Risperidone
// titration and three successive diagnoses.
func (s *TimelineService) SampleTimeline() *models.Timeline {
	illnessStart := date("2010-05-31")
	illnessEnd := illnessStart.AddDate(15, 0, 0)

	stays := []struct {
		id                   int
		admission, discharge string
	}{
		{1, "2010-12-10", "2011-02-21"},
		{2, "2012-02-10", "2012-04-28"},
		{3, "2013-06-15", "2013-09-19"},
		{4, "2015-06-14", "2015-09-19"},
		{5, "2017-06-08", "2017-09-19"},
		{6, "2020-06-08", "2020-09-19"},
	}

	inpatientStays := make([]models.InpatientStay, 0, len(stays))
	for _, stay := range stays {
		inpatientStays = append(inpatientStays, models.InpatientStay{
			StayID:    stay.id,
			Admission: date(stay.admission),
			Discharge: date(stay.discharge),
		})
	}

	medications := []models.MedicationEvent{
		{Date: illnessStart, Medication: "Risperidone", Dosage: "2 mg"},
		{Date: date("2010-12-11"), Medication: "Risperidone", Dosage: "3 mg"},
		{Date: date("2010-12-15"), Medication: "Risperidone", Dosage: "4 mg"},
	}

	diagnoses := []models.DiagnosisEvent{
		{Date: illnessStart, DiagnosisCode: "P-NOS", DiagnosisName: "Psychosis NOS"},
		{Date: illnessStart.AddDate(0, 0, 350), DiagnosisCode: "Sz", DiagnosisName: "Schizophrenia"},
		{Date: illnessStart.AddDate(0, 0, 736), DiagnosisCode: "SAD", DiagnosisName: "Schizoaffective Disorder"},
	}

	return &models.Timeline{
		PatientID:      "sample_patient",
		IllnessStart:   illnessStart,
		IllnessEnd:     illnessEnd,
		InpatientStays: inpatientStays,
		Medications:    medications,
		Diagnoses:      diagnoses,
	}
}

// Chart geometry constants. The stay band straddles the trajectory line
// at y=1; diagnoses annotate above, medications below.
const (
	chartStayBandBottom = 0.9
	chartStayBandTop    = 1.1
	chartDiagnosisY     = 1.25
	chartMedicationY    = 0.78
)

// ChartShape is a rectangle drawn behind the trajectory line.
type ChartShape struct {
	Type      string    `json:"type"`
	X0        time.Time `json:"x0"`
	X1        time.Time `json:"x1"`
	Y0        float64   `json:"y0"`
	Y1        float64   `json:"y1"`
	Label     string    `json:"label"`
	LineColor string    `json:"line_color"`
	FillColor string    `json:"fill_color"`
	Opacity   float64   `json:"opacity"`
}

// ChartAnnotation is a labelled marker anchored to a date.
type ChartAnnotation struct {
	X     time.Time `json:"x"`
	Y     float64   `json:"y"`
	Text  string    `json:"text"`
	Color string    `json:"color"`
}

// ChartSpec is the renderable description of the timeline chart.
type ChartSpec struct {
	Title          string            `json:"title"`
	RangeStart     time.Time         `json:"range_start"`
	RangeEnd       time.Time         `json:"range_end"`
	TrajectoryName string            `json:"trajectory_name"`
	Shapes         []ChartShape      `json:"shapes"`
	Annotations    []ChartAnnotation `json:"annotations"`
	Legends        map[string]string `json:"legends"`
}

// BuildChart maps a timeline onto a chart spec: one shape per inpatient
// stay, one annotation per diagnosis and medication event, and legend
// text keyed by series.
func (s *TimelineService) BuildChart(timeline *models.Timeline) *ChartSpec {
	spec := &ChartSpec{
		Title:          "Course of Illness with Diagnoses, Medications, and Inpatient Stays",
		RangeStart:     timeline.IllnessStart,
		RangeEnd:       timeline.IllnessEnd,
		TrajectoryName: "Course of Illness",
		Shapes:         make([]ChartShape, 0, len(timeline.InpatientStays)),
		Annotations:    make([]ChartAnnotation, 0, len(timeline.Diagnoses)+len(timeline.Medications)),
		Legends: map[string]string{
			"medications": "R = Risperidone",
			"diagnoses":   "Dx: P-NOS = Psychosis NOS; Dx: Sz = Schizophrenia; Dx: SAD = Schizoaffective Disorder",
		},
	}

	for _, stay := range timeline.InpatientStays {
		spec.Shapes = append(spec.Shapes, ChartShape{
			Type:      "rect",
			X0:        stay.Admission,
			X1:        stay.Discharge,
			Y0:        chartStayBandBottom,
			Y1:        chartStayBandTop,
			Label:     stayLabel(stay),
			LineColor: "RoyalBlue",
			FillColor: "LightSkyBlue",
			Opacity:   0.6,
		})
	}

	for _, diagnosis := range timeline.Diagnoses {
		spec.Annotations = append(spec.Annotations, ChartAnnotation{
			X:     diagnosis.Date,
			Y:     chartDiagnosisY,
			Text:  diagnosis.Label(),
			Color: "darkred",
		})
	}

	for _, medication := range timeline.Medications {
		spec.Annotations = append(spec.Annotations, ChartAnnotation{
			X:     medication.Date,
			Y:     chartMedicationY,
			Text:  medication.Label(),
			Color: "darkgreen",
		})
	}

	return spec
}

func stayLabel(stay models.InpatientStay) string {
	return fmt.Sprintf("Stay %d (%d days)", stay.StayID, stay.DurationDays())
}
