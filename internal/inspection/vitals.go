// internal/inspection/vitals.go
package inspection

import (
	"math"
	"math/rand"
	"strings"

	"github.com/qc-advancedmedic/nui/pkg/core"
)

// Status colours.
const (
	ColorRed       = "#e74c3c"
	ColorOrange    = "#f39c12"
	ColorDarkAmber = "#e67e22"
	ColorGreen     = "#27ae60"
)

// PatientVitals is a pulse reading derived from the host's health report.
type PatientVitals struct {
	HeartRate   int    `json:"heartRate"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Health      int    `json:"health"`
}

// VitalsDisplay is what the vitals card shows.
type VitalsDisplay struct {
	HeartRate   int    `json:"heartRate"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	StatusColor string `json:"statusColor"`
}

type pulseBand struct {
	min         float64 // health percentage, inclusive
	base, span  float64
	status      string
	description string
}

var pulseBands = []pulseBand{
	{90, 60, 20, "Normal", "Strong, regular pulse. Patient appears stable."},
	{75, 80, 20, "Elevated", "Pulse slightly elevated. Patient may be in mild distress."},
	{50, 100, 30, "Tachycardia", "Rapid pulse detected. Patient shows signs of significant distress."},
	{25, 120, 40, "Severe Tachycardia", "Dangerously fast pulse. Patient in critical condition."},
}

// VitalsFromHealth turns a health percentage into a pulse reading.
func VitalsFromHealth(health int, dead, unconscious bool, rng *rand.Rand) PatientVitals {
	v := PatientVitals{Health: health}
	var rate float64

	switch {
	case dead:
		v.Status = "No Pulse Detected"
		v.Description = "Patient shows no signs of life. No pulse or breathing detected."
	case unconscious:
		rate = 40 + rng.Float64()*20
		v.Status = "Weak Pulse"
		v.Description = "Patient is unconscious. Weak, irregular pulse detected."
	default:
		pct := float64(min(max(health, 0), 100))
		matched := false
		for _, b := range pulseBands {
			if pct >= b.min {
				rate = b.base + rng.Float64()*b.span
				v.Status, v.Description = b.status, b.description
				matched = true
				break
			}
		}
		if !matched && pct > 0 {
			rate = 40 + rng.Float64()*30
			v.Status = "Weak & Irregular"
			v.Description = "Weak, irregular pulse. Patient is barely clinging to life."
		}
	}

	v.HeartRate = int(math.Round(rate))
	return v
}

// StatusColor picks the vitals card colour for a reading.
func StatusColor(heartRate int, status string) string {
	switch {
	case heartRate == 0 || strings.Contains(status, "No Pulse"):
		return ColorRed
	case heartRate < 50 || strings.Contains(status, "Weak"):
		return ColorOrange
	case heartRate > 120 || strings.Contains(status, "Tachycardia"):
		return ColorRed
	case heartRate > 100 || strings.Contains(status, "Elevated"):
		return ColorOrange
	}
	return ColorGreen
}

// Display renders a host-backed reading.
func (v PatientVitals) Display() VitalsDisplay {
	desc := v.Description
	if desc == "" {
		desc = v.Status
	}
	return VitalsDisplay{
		HeartRate:   v.HeartRate,
		Status:      v.Status,
		Description: desc,
		StatusColor: StatusColor(v.HeartRate, v.Status),
	}
}

// FallbackVitals estimates vitals from wounds and blood level until the host
// reports health.
func FallbackVitals(d core.InspectionData) VitalsDisplay {
	blood := d.EffectiveBloodLevel()
	score := d.Wounds.TotalScore()

	rate := 72
	switch {
	case blood < 50:
		rate += 40
	case blood < 70:
		rate += 25
	case blood < 90:
		rate += 10
	}
	switch {
	case score > 300:
		rate += 20
	case score > 150:
		rate += 10
	}
	rate = min(max(rate, 40), 180)

	out := VitalsDisplay{HeartRate: rate, Status: "Stable", StatusColor: ColorGreen}
	switch {
	case blood < 30 || score > 400:
		out.Status, out.StatusColor = "Critical", ColorRed
	case blood < 60 || score > 200:
		out.Status, out.StatusColor = "Serious", ColorOrange
	case blood < 80 || score > 100:
		out.Status, out.StatusColor = "Injured", ColorDarkAmber
	}
	return out
}

// Temperature estimates body temperature in °F: fever from injuries,
// hypothermia from blood loss.
func Temperature(d core.InspectionData) float64 {
	blood := d.EffectiveBloodLevel()
	score := d.Wounds.TotalScore()

	adj := 0.0
	switch {
	case score > 300:
		adj += 3.5
	case score > 150:
		adj += 2
	case score > 50:
		adj += 1
	}
	switch {
	case blood < 30:
		adj -= 2
	case blood < 60:
		adj -= 1
	}
	return math.Round((98.6+adj)*10) / 10
}
