package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleTimeline(t *testing.T) {
	svc := NewTimelineService()
	timeline := svc.SampleTimeline()

	assert.Equal(t, "sample_patient", timeline.PatientID)
	assert.Equal(t, time.Date(2010, 5, 31, 0, 0, 0, 0, time.UTC), timeline.IllnessStart)
	assert.Equal(t, timeline.IllnessStart.AddDate(15, 0, 0), timeline.IllnessEnd)

	require.Len(t, timeline.InpatientStays, 6)
	require.Len(t, timeline.Medications, 3)
	require.Len(t, timeline.Diagnoses, 3)

	// Stays are chronological and each discharge follows its admission.
	for i, stay := range timeline.InpatientStays {
		assert.Equal(t, i+1, stay.StayID)
		assert.True(t, stay.Discharge.After(stay.Admission))
		if i > 0 {
			assert.True(t, stay.Admission.After(timeline.InpatientStays[i-1].Discharge))
		}
	}

	first := timeline.InpatientStays[0]
	assert.Equal(t, time.Date(2010, 12, 10, 0, 0, 0, 0, time.UTC), first.Admission)
	assert.Equal(t, 73, first.DurationDays())

	assert.Equal(t, "Risperidone 2 mg", timeline.Medications[0].Label())
	assert.Equal(t, "Dx: P-NOS", timeline.Diagnoses[0].Label())
	assert.Equal(t, "Schizoaffective Disorder", timeline.Diagnoses[2].DiagnosisName)
}

func TestBuildChart(t *testing.T) {
	svc := NewTimelineService()
	timeline := svc.SampleTimeline()

	spec := svc.BuildChart(timeline)

	assert.Equal(t, timeline.IllnessStart, spec.RangeStart)
	assert.Equal(t, timeline.IllnessEnd, spec.RangeEnd)
	assert.Equal(t, "Course of Illness", spec.TrajectoryName)

	require.Len(t, spec.Shapes, 6)
	assert.Equal(t, "rect", spec.Shapes[0].Type)
	assert.Equal(t, "Stay 1 (73 days)", spec.Shapes[0].Label)
	assert.Equal(t, timeline.InpatientStays[0].Admission, spec.Shapes[0].X0)

	// One annotation per diagnosis and per medication event.
	require.Len(t, spec.Annotations, 6)
	diagnoses := 0
	medications := 0
	for _, a := range spec.Annotations {
		switch a.Color {
		case "darkred":
			diagnoses++
			assert.Equal(t, 1.25, a.Y)
		case "darkgreen":
			medications++
			assert.Equal(t, 0.78, a.Y)
		}
	}
	assert.Equal(t, 3, diagnoses)
	assert.Equal(t, 3, medications)

	assert.Contains(t, spec.Legends["diagnoses"], "Schizophrenia")
}
