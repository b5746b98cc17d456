// internal/inspection/session.go
package inspection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/qc-advancedmedic/nui/internal/eligibility"
	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/pkg/core"
)

// View is a main view of the inspection panel.
type View string

const (
	ViewHome           View = "home"
	ViewBandage        View = "bandage"
	ViewTourniquet     View = "tourniquet"
	ViewMedicine       View = "medicine"
	ViewInjection      View = "injection"
	ViewBodyInspection View = "body-inspection"

	// submenus, opened on top of the current view
	ViewVitals      View = "vitals"
	ViewDoctorsBag  View = "doctors-bag"
	ViewThermometer View = "thermometer"
)

// Valid reports whether v is a known view or submenu.
func (v View) Valid() bool {
	switch v {
	case ViewHome, ViewBandage, ViewTourniquet, ViewMedicine, ViewInjection, ViewBodyInspection,
		ViewVitals, ViewDoctorsBag, ViewThermometer:
		return true
	}
	return false
}

// FullInspectionRatio of the inspectable parts must be examined before the
// examination counts as complete.
const FullInspectionRatio = 0.8

// Notification lifetimes.
const (
	NotificationTTL       = 4500 * time.Millisecond
	UpdateNotificationTTL = 2 * time.Second
)

// Notification icons.
const (
	IconSuccess = "fa-check-circle"
	IconFailure = "fa-times-circle"
	IconPending = "fa-clock"
	IconSync    = "fa-sync"
)

var (
	// ErrNoSelection is returned when a treatment lacks an item or a body part.
	ErrNoSelection = errors.New("no treatment selected")
	// ErrUnknownPart is returned for keys outside the inspectable parts.
	ErrUnknownPart = errors.New("unknown body part")
	// ErrUnknownItem is returned when an item id is not in the catalog.
	ErrUnknownItem = errors.New("unknown item")
)

// Notification is the transient banner of the panel.
type Notification struct {
	Message   string    `json:"message"`
	Icon      string    `json:"icon"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Submenus tracks which submenus are open.
type Submenus struct {
	Vitals      bool `json:"vitals"`
	DoctorsBag  bool `json:"doctorsBag"`
	Thermometer bool `json:"thermometer"`
}

// Dependencies holds all dependencies needed by a session
type Dependencies struct {
	Gateway gateway.Gateway
	Rand    *rand.Rand
	Now     func() time.Time
	Logger  *slog.Logger
	// Changed is called after state changes that happen outside an action,
	// such as hold progress.
	Changed func()
}

// Session is the local state of one opened inspection panel.
type Session struct {
	deps Dependencies

	mu           sync.Mutex
	data         core.InspectionData
	catalog      core.Catalog
	view         View
	submenus     Submenus
	selectedBone core.BodyPart
	selectedPart core.BodyPart
	selected     map[core.ItemKind]string

	inspected         map[core.BodyPart]bool
	discovered        map[core.BodyPart]*core.Wound
	reports           map[core.BodyPart]Report
	hasInspectedFully bool

	holds              map[Hold]*hold
	vitalsChecked      bool
	temperatureChecked bool
	temperature        float64
	patientVitals      *PatientVitals

	assessment   []string
	treatmentLog []string
	notification *Notification
}

// NewSession opens a panel over an inspection snapshot.
func NewSession(data core.InspectionData, deps Dependencies) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(deps.Now().UnixNano()))
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	catalog := core.DefaultCatalog()
	catalog.BodyParts = data.BodyParts

	return &Session{
		deps:       deps,
		data:       data,
		catalog:    catalog,
		view:       ViewHome,
		selected:   make(map[core.ItemKind]string),
		inspected:  make(map[core.BodyPart]bool),
		discovered: make(map[core.BodyPart]*core.Wound),
		reports:    make(map[core.BodyPart]Report),
		holds:      map[Hold]*hold{HoldVitals: {}, HoldTemperature: {}},
	}
}

// Data returns the current snapshot.
func (s *Session) Data() core.InspectionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Refresh replaces the patient snapshot and keeps what the medic found so
// far. It reports false when data belongs to another patient.
func (s *Session) Refresh(data core.InspectionData) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data.PlayerID != s.data.PlayerID {
		return false
	}
	s.data = data
	if data.BodyParts != nil {
		s.catalog.BodyParts = data.BodyParts
	}
	return true
}

// Catalog returns the items offered by the panel.
func (s *Session) Catalog() core.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

func (s *Session) changed() {
	if s.deps.Changed != nil {
		s.deps.Changed()
	}
}

// RequestVitals asks the host for the patient's health, as the panel does
// when it opens and when a vitals check completes.
func (s *Session) RequestVitals(ctx context.Context) error {
	s.mu.Lock()
	req := gateway.VitalsRequest{
		Action: gateway.ActionCheckVitals,
		Data:   gateway.VitalsData{PlayerID: string(s.data.PlayerID), PlayerSource: s.data.PlayerSource},
	}
	s.mu.Unlock()

	if _, err := s.deps.Gateway.Post(ctx, gateway.EndpointMedicalRequest, req); err != nil {
		return fmt.Errorf("vitals request failed: %w", err)
	}
	return nil
}

// Close tells the host the panel was closed.
func (s *Session) Close(ctx context.Context) error {
	_, err := s.deps.Gateway.Post(ctx, gateway.EndpointCloseInspectionPanel, struct{}{})
	return err
}

// partName is the display name of a part: host label first, built-in label otherwise.
func (s *Session) partName(p core.BodyPart) string {
	if p == core.Patient {
		return string(core.Patient)
	}
	return s.catalog.PartLabel(p)
}

func (s *Session) notify(message, icon string, ttl time.Duration) {
	s.notification = &Notification{Message: message, Icon: icon, ExpiresAt: s.deps.Now().Add(ttl)}
}

// addAssessment appends to the assessment log, skipping duplicates.
func (s *Session) addAssessment(entry string) {
	for _, e := range s.assessment {
		if e == entry {
			return
		}
	}
	s.assessment = append(s.assessment, entry)
}

// addTreatment appends a timestamped line to the treatment log.
func (s *Session) addTreatment(text string) {
	s.treatmentLog = append(s.treatmentLog, fmt.Sprintf("%s - %s", s.deps.Now().Format("15:04"), text))
}

// Inspect examines a body part. A wound found there is discovered only when it
// is material; scars and minor wounds stay hidden from the treatment views.
func (s *Session) Inspect(ctx context.Context, key string) (Report, error) {
	part := core.ToBackend(key)
	if !part.Inspectable() {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownPart, key)
	}

	s.mu.Lock()
	s.selectedBone = part
	s.inspected[part] = true

	w := s.data.Wounds.Get(part)
	if eligibility.Material(w) {
		found := *w
		found.BodyPart = part
		s.discovered[part] = &found
		s.addAssessment(fmt.Sprintf("%s: %s", s.partName(part), Assessment(w)))
	}
	if float64(len(s.inspected)) >= float64(len(core.InspectableParts))*FullInspectionRatio {
		s.hasInspectedFully = true
	}

	report := BuildReport(w, s.data.InjuryStates)
	s.reports[part] = report

	var woundData *core.Wound
	if w != nil {
		c := *w
		woundData = &c
	}
	notice := map[string]any{
		"playerId":       s.data.PlayerID,
		"bodyPart":       part.FrontendKey(),
		"woundData":      woundData,
		"detailedReport": report,
		"patientName":    s.data.PlayerName,
	}
	s.mu.Unlock()

	if _, err := s.deps.Gateway.Post(ctx, gateway.EndpointInspectBodyPart, notice); err != nil {
		s.deps.Logger.Warn("Failed to send inspection notice", "bodyPart", part, "error", err)
	}
	return report, nil
}

// Discovered returns the wound captured when part was inspected, or nil when
// nothing material was found there.
func (s *Session) Discovered(part core.BodyPart) *core.Wound {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discovered[part]
}

// HasInspectedFully reports whether enough parts were examined.
func (s *Session) HasInspectedFully() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasInspectedFully
}

// SwitchView changes the main view or opens a submenu. Main views reset
// selections and any vitals check in progress and close every submenu.
func (s *Session) SwitchView(v View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown view %q", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v {
	case ViewVitals:
		s.submenus = Submenus{Vitals: true}
		return nil
	case ViewDoctorsBag:
		s.submenus = Submenus{DoctorsBag: true}
		return nil
	case ViewThermometer:
		s.submenus = Submenus{Thermometer: true}
		return nil
	}

	s.view = v
	*s.holds[HoldVitals] = hold{}
	s.clearSelections()
	s.submenus = Submenus{}
	return nil
}

func (s *Session) clearSelections() {
	s.selected = make(map[core.ItemKind]string)
	s.selectedPart = ""
}

// SelectBodyPart picks the part the next treatment is applied to.
func (s *Session) SelectBodyPart(key string) error {
	part := core.ToBackend(key)
	if !part.Inspectable() {
		return fmt.Errorf("%w: %q", ErrUnknownPart, key)
	}
	s.mu.Lock()
	s.selectedPart = part
	s.mu.Unlock()
	return nil
}

// SelectBone focuses a part in the body inspection view without examining it.
func (s *Session) SelectBone(key string) error {
	part := core.ToBackend(key)
	if !part.Inspectable() {
		return fmt.Errorf("%w: %q", ErrUnknownPart, key)
	}
	s.mu.Lock()
	s.selectedBone = part
	s.mu.Unlock()
	return nil
}

// SelectItem picks the item of a kind. An empty id clears the selection.
func (s *Session) SelectItem(kind core.ItemKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		delete(s.selected, kind)
		return nil
	}
	if _, ok := s.catalog.Find(kind, id); !ok {
		return fmt.Errorf("%w: %s %q", ErrUnknownItem, kind, id)
	}
	s.selected[kind] = id
	return nil
}
