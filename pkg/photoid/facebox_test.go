package photoid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessDetection(t *testing.T) {
	tests := []struct {
		name    string
		det     Detection
		verdict Verdict
	}{
		{
			name:    "Well Framed Face",
			det:     Detection{Count: 1, Box: FaceBox{XCenter: 0.5, YCenter: 0.45, Height: 0.30, Width: 0.25}},
			verdict: VerdictOK,
		},
		{
			name:    "Too Far Away",
			det:     Detection{Count: 1, Box: FaceBox{XCenter: 0.5, YCenter: 0.45, Height: 0.10, Width: 0.08}},
			verdict: VerdictWarn,
		},
		{
			name:    "Too Close",
			det:     Detection{Count: 1, Box: FaceBox{XCenter: 0.5, YCenter: 0.45, Height: 0.65, Width: 0.5}},
			verdict: VerdictWarn,
		},
		{
			name:    "Off Center Horizontally",
			det:     Detection{Count: 1, Box: FaceBox{XCenter: 0.70, YCenter: 0.45, Height: 0.30, Width: 0.25}},
			verdict: VerdictWarn,
		},
		{
			name:    "Off Center Vertically",
			det:     Detection{Count: 1, Box: FaceBox{XCenter: 0.5, YCenter: 0.80, Height: 0.30, Width: 0.25}},
			verdict: VerdictWarn,
		},
		{
			name:    "No Face",
			det:     Detection{Count: 0},
			verdict: VerdictBad,
		},
		{
			name:    "Multiple Faces",
			det:     Detection{Count: 2, Box: FaceBox{XCenter: 0.5, YCenter: 0.45, Height: 0.30}},
			verdict: VerdictBad,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := AssessDetection(tc.det)
			assert.Equal(t, tc.verdict, a.Verdict)
			assert.NotEmpty(t, a.Message, "every assessment should carry guidance")
		})
	}
}

func TestAssessDetectionSentinelsBeatFraming(t *testing.T) {
	// A multi-face frame must be blocked even when the strongest face is
	// perfectly framed.
	a := AssessDetection(Detection{Count: 3, Box: FaceBox{XCenter: 0.5, YCenter: 0.45, Height: 0.30}})
	assert.Equal(t, VerdictBad, a.Verdict)
	assert.False(t, a.OK())
}

func TestAssessmentOK(t *testing.T) {
	assert.True(t, Assessment{VerdictOK, "Ready to capture."}.OK())
	assert.False(t, Assessment{VerdictWarn, "Too close."}.OK())
	assert.False(t, Assessment{VerdictBad, "No face detected."}.OK())
}
