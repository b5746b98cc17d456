// internal/medical/rules.go
package medical

import (
	"fmt"
	"strings"

	"github.com/qc-advancedmedic/nui/internal/eligibility"
	"github.com/qc-advancedmedic/nui/pkg/core"
)

// Default bar colours. The host may override them through uiColors.
const (
	ColorBandaged   = "#3498db"
	ColorTourniquet = "#f1c40f"
	ColorInfected   = "#9C27B0"
	ColorNormal     = "#27ae60"
	ColorMedium     = "#f39c12"
	ColorLow        = "#e74c3c"
)

// Animation classes of a body part image.
const (
	AnimationNone     = ""
	AnimationBandaged = "bandaged-body-part"
	AnimationWounded  = "wounded-body-part"
)

// Tooltip lines.
const (
	StatusBandage    = "The bandage feels secure and is helping the healing."
	StatusTourniquet = "The tourniquet is stopping the bleeding but feels tight."
	StatusInfection  = "Something doesn't feel right here..."
	StatusFine       = "This feels fine."
)

const visibleInfectionMin = 3

var defaultInfectionStages = map[int]core.InfectionStage{
	0: {Name: "Healthy", Color: "#00ff00"},
	1: {Name: "Early Infection", Color: "#ffff00"},
	2: {Name: "Moderate Infection", Color: "#ff8000"},
	3: {Name: "Serious Infection", Color: "#ff4000"},
	4: {Name: "Severe Infection", Color: "#ff0000"},
}

// Chart evaluates the display rules of the medical panel over one snapshot.
type Chart struct {
	data core.MedicalData
}

// NewChart wraps a snapshot.
func NewChart(d core.MedicalData) Chart {
	return Chart{data: d}
}

func (c Chart) color(key, fallback string) string {
	if v, ok := c.data.UIColors[key]; ok && v != "" {
		return v
	}
	return fallback
}

// HealthPercentage prefers the host's per-part reading, then the legacy wound
// health. Parts without either are at full health.
func (c Chart) HealthPercentage(p core.BodyPart) int {
	if h, ok := c.data.BodyPartHealth[p]; ok {
		return h.Percentage
	}
	if w := c.data.Wounds.Get(p); w != nil {
		if w.Health == 0 {
			return 100
		}
		return w.Health
	}
	return 100
}

// HasBandage reports an active bleeding treatment on p.
func (c Chart) HasBandage(p core.BodyPart) bool {
	return eligibility.IsAlreadyBandaged(p, c.records(p))
}

// HasTourniquet reports an active severe bleeding treatment on p.
func (c Chart) HasTourniquet(p core.BodyPart) bool {
	return eligibility.IsAlreadyTourniqueted(p, c.records(p))
}

func (c Chart) records(p core.BodyPart) []core.TreatmentRecord {
	return c.data.Wounds.RecordsFor(p, c.data.Treatments)
}

// HealthColor picks the bar colour of a part.
func (c Chart) HealthColor(p core.BodyPart) string {
	switch {
	case c.HasBandage(p):
		return c.color("bandaged", ColorBandaged)
	case c.HasTourniquet(p):
		return c.color("tourniquet", ColorTourniquet)
	case c.InfectionInfo(p).Stage > 0:
		return c.color("infected", ColorInfected)
	}
	pct := c.HealthPercentage(p)
	switch {
	case pct >= 70:
		return c.color("normal", ColorNormal)
	case pct >= 30:
		return c.color("medium", ColorMedium)
	}
	return c.color("low", ColorLow)
}

// HealthText describes a percentage in words.
func HealthText(pct int) string {
	switch {
	case pct >= 80:
		return "Healthy"
	case pct >= 60:
		return "Minor Injury"
	case pct >= 40:
		return "Moderate Injury"
	case pct >= 20:
		return "Serious Injury"
	}
	return "Critical"
}

// InfectionInfo returns the infection of a part, stage 0 when none is reported.
func (c Chart) InfectionInfo(p core.BodyPart) core.Infection {
	if inf, ok := c.data.Infections[p]; ok {
		return inf
	}
	return core.Infection{}
}

// InfectionStage names a stage. Unknown stages read as healthy.
func (c Chart) InfectionStage(stage int) core.InfectionStage {
	stages := c.data.InfectionStages
	if len(stages) == 0 {
		stages = defaultInfectionStages
	}
	if s, ok := stages[stage]; ok {
		return s
	}
	if s, ok := stages[0]; ok {
		return s
	}
	return defaultInfectionStages[0]
}

// PainThought is the first-person pain line of a part, empty without pain.
func (c Chart) PainThought(p core.BodyPart) string {
	w := c.data.Wounds.Get(p)
	if w == nil || w.PainLevel == 0 {
		return ""
	}
	if st, ok := c.data.InjuryStates.Lookup(w.PainLevel); ok && st.Pain != "" {
		return fmt.Sprintf("My %s %s", p.ThoughtName(), strings.ToLower(st.Pain))
	}
	return fmt.Sprintf("My %s is in pain", p.ThoughtName())
}

// BleedingThought is the first-person bleeding line of a part.
func (c Chart) BleedingThought(p core.BodyPart) string {
	w := c.data.Wounds.Get(p)
	if w == nil || w.BleedingLevel == 0 {
		return ""
	}
	if st, ok := c.data.InjuryStates.Lookup(w.BleedingLevel); ok && st.Bleeding != "" {
		return fmt.Sprintf("My %s %s", p.ThoughtName(), strings.ToLower(st.Bleeding))
	}
	return fmt.Sprintf("My %s is bleeding", p.ThoughtName())
}

// VisibleInfection reports whether an infection shows through: stage 3 or
// worse on an unbandaged part.
func (c Chart) VisibleInfection(p core.BodyPart) bool {
	return c.InfectionInfo(p).Stage >= visibleInfectionMin && !c.HasBandage(p)
}

// Status returns the tooltip lines of a part.
func (c Chart) Status(p core.BodyPart) []string {
	var lines []string
	if c.HasBandage(p) {
		lines = append(lines, StatusBandage)
	}
	if c.HasTourniquet(p) {
		lines = append(lines, StatusTourniquet)
	}
	if c.VisibleInfection(p) {
		if sym := c.InfectionInfo(p).Symptom; sym != "" {
			lines = append(lines, sym)
		} else {
			lines = append(lines, StatusInfection)
		}
	}
	if t := c.PainThought(p); t != "" {
		lines = append(lines, t)
	}
	if t := c.BleedingThought(p); t != "" {
		lines = append(lines, t)
	}
	if len(lines) == 0 {
		return []string{StatusFine}
	}
	return lines
}

// Animation returns the image class of a part.
func (c Chart) Animation(p core.BodyPart) string {
	w := c.data.Wounds.Get(p)
	if w == nil || (w.PainLevel == 0 && w.BleedingLevel == 0) {
		return AnimationNone
	}
	if c.HasBandage(p) {
		return AnimationBandaged
	}
	return AnimationWounded
}

// BarParts lists the parts shown as bars, in panel order. Blood is last.
var BarParts = []core.BodyPart{
	core.Head, core.Spine, core.UpperBody,
	core.LeftArm, core.LeftHand, core.RightArm, core.RightHand,
	core.LeftLeg, core.RightLeg, core.LeftFoot, core.RightFoot,
	core.LowerBody, core.Blood,
}

// Bar is one health bar of the panel.
type Bar struct {
	BodyPart   string   `json:"bodyPart"`
	Label      string   `json:"label"`
	Percentage int      `json:"percentage"`
	Color      string   `json:"color"`
	Text       string   `json:"text"`
	Animation  string   `json:"animation,omitempty"`
	Status     []string `json:"status"`
	Infection  string   `json:"infection,omitempty"`
}

func (c Chart) label(p core.BodyPart) string {
	if cfg, ok := c.data.BodyParts[p]; ok && cfg.Label != "" {
		return cfg.Label
	}
	if p == core.Blood {
		return "Blood"
	}
	return p.Label()
}

// Bars builds every bar of the panel.
func (c Chart) Bars() []Bar {
	out := make([]Bar, 0, len(BarParts))
	for _, p := range BarParts {
		pct := c.HealthPercentage(p)
		b := Bar{
			BodyPart:   strings.ToLower(string(p)),
			Label:      c.label(p),
			Percentage: pct,
			Color:      c.HealthColor(p),
			Text:       HealthText(pct),
		}
		if p != core.Blood {
			b.Animation = c.Animation(p)
			b.Status = c.Status(p)
			if inf := c.InfectionInfo(p); inf.Stage > 0 {
				b.Infection = c.InfectionStage(inf.Stage).Name
			}
		}
		out = append(out, b)
	}
	return out
}

// WoundOption is a part offered in the bandage or tourniquet sub-panel.
type WoundOption struct {
	BodyPart      core.BodyPart `json:"bodyPart"`
	Label         string        `json:"label"`
	BleedingLevel int           `json:"bleedingLevel"`
}

// BandageableWounds lists parts with bandageable bleeding and no active bandage.
func (c Chart) BandageableWounds() []WoundOption {
	return c.woundOptions(eligibility.NeedsBandage)
}

// TourniquetableWounds lists parts with severe bleeding and no active tourniquet.
func (c Chart) TourniquetableWounds() []WoundOption {
	return c.woundOptions(eligibility.NeedsTourniquet)
}

func (c Chart) woundOptions(needs func(*core.Wound, []core.TreatmentRecord) bool) []WoundOption {
	var out []WoundOption
	for _, p := range BarParts {
		w := c.data.Wounds.Get(p)
		if w == nil {
			continue
		}
		keyed := *w
		keyed.BodyPart = p
		if !needs(&keyed, c.records(p)) {
			continue
		}
		out = append(out, WoundOption{BodyPart: p, Label: c.label(p), BleedingLevel: w.BleedingLevel})
	}
	return out
}

// TreatmentRow is a line of the treatments sub-panel.
type TreatmentRow struct {
	BodyPart  core.BodyPart      `json:"bodyPart"`
	Type      core.TreatmentType `json:"type"`
	Title     string             `json:"title"`
	Detail    string             `json:"detail"`
	Removable bool               `json:"removable"`
}

// TreatmentRows describes the applied treatments. A treatment can be removed
// only once the wound under it is gone.
func (c Chart) TreatmentRows() []TreatmentRow {
	out := make([]TreatmentRow, 0, len(c.data.Treatments))
	for _, r := range c.data.Treatments {
		part := strings.ToUpper(string(r.BodyPart))
		if part == "" {
			part = "UNKNOWN"
		}
		kind := strings.ToUpper(string(r.Type))
		if r.Type == core.TreatmentBandage {
			kind = "Bandaged"
		}
		item := r.ItemType
		if item == "" {
			item = "Unknown"
		}
		by := r.AppliedBy
		if by == "" {
			by = "Self"
		}
		out = append(out, TreatmentRow{
			BodyPart:  r.BodyPart,
			Type:      r.Type,
			Title:     part + " - " + kind,
			Detail:    fmt.Sprintf("Item: %s | Applied: %s", item, by),
			Removable: c.data.Wounds.Get(r.BodyPart) == nil,
		})
	}
	return out
}
