// internal/medical/panel.go
package medical

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/pkg/core"
)

// SubPanel is one of the mutually exclusive sub-panels.
type SubPanel string

const (
	SubPanelNone       SubPanel = ""
	SubPanelBandage    SubPanel = "bandage"
	SubPanelTourniquet SubPanel = "tourniquet"
	SubPanelTreatments SubPanel = "treatments"
)

var (
	// ErrWoundPresent is returned when removing a treatment from a part that is still wounded.
	ErrWoundPresent = errors.New("wound still present")
	// ErrRejected is returned when the host refuses a treatment.
	ErrRejected = errors.New("treatment rejected")
)

// TourniquetItems are offered when the host sends no tourniquet configuration.
var TourniquetItems = []core.BandageType{
	{ItemName: "tourniquet_basic", Label: "Basic Tourniquet"},
	{ItemName: "tourniquet_advanced", Label: "Advanced Tourniquet"},
}

// AvailableItem is an item the player carries.
type AvailableItem struct {
	ID       string `json:"id"`
	ItemName string `json:"itemName"`
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
}

// AvailableItems lists the configured items with a quantity above zero,
// ordered by label.
func AvailableItems(types map[string]core.BandageType, inventory map[string]int) []AvailableItem {
	var out []AvailableItem
	for id, t := range types {
		if q := inventory[t.ItemName]; q > 0 {
			out = append(out, AvailableItem{ID: id, ItemName: t.ItemName, Label: t.Label, Quantity: q})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].ItemName < out[j].ItemName
	})
	return out
}

// Dependencies holds all dependencies needed by a panel
type Dependencies struct {
	Gateway gateway.Gateway
	Logger  *slog.Logger
}

// Panel is the local state of the medical (self-examination) panel.
type Panel struct {
	deps Dependencies

	mu                     sync.Mutex
	data                   core.MedicalData
	sub                    SubPanel
	selectedPart           core.BodyPart
	selectedTourniquetPart core.BodyPart
	inventory              map[string]int
}

// NewPanel opens the panel over a snapshot.
func NewPanel(data core.MedicalData, deps Dependencies) *Panel {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Panel{deps: deps, data: data}
}

// Data returns the current snapshot.
func (p *Panel) Data() core.MedicalData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// Update merges a host update into the snapshot.
func (p *Panel) Update(patch core.MedicalDataPatch) {
	p.mu.Lock()
	p.data = patch.Apply(p.data)
	if patch.Inventory != nil {
		p.inventory = nil
	}
	p.mu.Unlock()
}

// Chart returns the display rules over the current snapshot.
func (p *Panel) Chart() Chart {
	return NewChart(p.Data())
}

// SubPanel returns the open sub-panel.
func (p *Panel) SubPanel() SubPanel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub
}

// Inventory returns the freshest known inventory: the one fetched when a
// sub-panel opened, or the snapshot's.
func (p *Panel) Inventory() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentInventory()
}

func (p *Panel) currentInventory() map[string]int {
	if p.inventory != nil {
		return p.inventory
	}
	return p.data.Inventory
}

func (p *Panel) open(sub SubPanel) {
	p.mu.Lock()
	p.sub = sub
	p.selectedPart = ""
	p.selectedTourniquetPart = ""
	p.mu.Unlock()
}

// fetchInventory refreshes the inventory. A failed fetch keeps the last known one.
func (p *Panel) fetchInventory(ctx context.Context) {
	resp, err := p.deps.Gateway.Post(ctx, gateway.EndpointGetInventory, struct{}{})
	if err != nil {
		p.deps.Logger.Warn("Failed to fetch inventory", "error", err)
		return
	}
	inv, err := gateway.DecodeInventory(resp)
	if err != nil {
		p.deps.Logger.Warn("Failed to read inventory", "error", err)
		return
	}
	if inv == nil {
		return
	}
	p.mu.Lock()
	p.inventory = inv
	p.mu.Unlock()
}

// OpenBandagePanel shows the bandage sub-panel and refreshes the inventory.
func (p *Panel) OpenBandagePanel(ctx context.Context) {
	p.open(SubPanelBandage)
	p.fetchInventory(ctx)
}

// OpenTourniquetPanel shows the tourniquet sub-panel and refreshes the inventory.
func (p *Panel) OpenTourniquetPanel(ctx context.Context) {
	p.open(SubPanelTourniquet)
	p.fetchInventory(ctx)
}

// OpenTreatmentsPanel shows the applied treatments and asks the host for
// fresh medical data.
func (p *Panel) OpenTreatmentsPanel(ctx context.Context) error {
	p.open(SubPanelTreatments)
	if _, err := p.deps.Gateway.Post(ctx, gateway.EndpointRefreshMedicalData, struct{}{}); err != nil {
		return fmt.Errorf("failed to refresh medical data: %w", err)
	}
	return nil
}

// CloseSubPanels closes every sub-panel and clears the selected parts.
func (p *Panel) CloseSubPanels() {
	p.open(SubPanelNone)
}

// SelectPart picks the part in the open bandage or tourniquet sub-panel.
func (p *Panel) SelectPart(part core.BodyPart) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.sub {
	case SubPanelBandage:
		p.selectedPart = part
	case SubPanelTourniquet:
		p.selectedTourniquetPart = part
	}
}

// AvailableBandages lists the configured bandages the player carries.
func (p *Panel) AvailableBandages() []AvailableItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return AvailableItems(p.data.BandageTypes, p.currentInventory())
}

// AvailableTourniquets lists the tourniquets the player carries.
func (p *Panel) AvailableTourniquets() []AvailableItem {
	types := make(map[string]core.BandageType, len(TourniquetItems))
	for _, t := range TourniquetItems {
		types[t.ItemName] = t
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return AvailableItems(types, p.currentInventory())
}

func (p *Panel) post(ctx context.Context, endpoint string, body gateway.BodyPartTreatment) error {
	resp, err := p.deps.Gateway.Post(ctx, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s failed: %w", endpoint, err)
	}
	if !resp.OK() {
		if resp.Message != "" {
			return fmt.Errorf("%w: %s", ErrRejected, resp.Message)
		}
		return ErrRejected
	}
	return nil
}

// ApplyBandage applies a bandage item to a part and closes the sub-panels.
func (p *Panel) ApplyBandage(ctx context.Context, part core.BodyPart, itemName string) error {
	err := p.post(ctx, gateway.EndpointApplyBandage, gateway.BodyPartTreatment{
		BodyPart:    string(part),
		BandageType: itemName,
	})
	p.CloseSubPanels()
	return err
}

// ApplyTourniquet applies a tourniquet item to a part and closes the sub-panels.
func (p *Panel) ApplyTourniquet(ctx context.Context, part core.BodyPart, itemName string) error {
	err := p.post(ctx, gateway.EndpointApplyTourniquet, gateway.BodyPartTreatment{
		BodyPart:    string(part),
		BandageType: itemName,
	})
	p.CloseSubPanels()
	return err
}

// ReplaceTreatment asks the host to swap an applied treatment for a fresh one.
func (p *Panel) ReplaceTreatment(ctx context.Context, part core.BodyPart, t core.TreatmentType) error {
	return p.post(ctx, gateway.EndpointReplaceTreatment, gateway.BodyPartTreatment{
		BodyPart:      string(part),
		TreatmentType: string(t),
	})
}

// RemoveTreatment takes an applied treatment off a part that has healed.
func (p *Panel) RemoveTreatment(ctx context.Context, part core.BodyPart, t core.TreatmentType) error {
	p.mu.Lock()
	wounded := p.data.Wounds.Get(part) != nil
	p.mu.Unlock()
	if wounded {
		return fmt.Errorf("%w on %s", ErrWoundPresent, part)
	}
	return p.post(ctx, gateway.EndpointRemoveTreatment, gateway.BodyPartTreatment{
		BodyPart:      string(part),
		TreatmentType: string(t),
	})
}

// Close tells the host the panel was closed.
func (p *Panel) Close(ctx context.Context) error {
	p.CloseSubPanels()
	_, err := p.deps.Gateway.Post(ctx, gateway.EndpointCloseMedicalPanel, struct{}{})
	return err
}

// ViewModel is everything the medical panel renders.
type ViewModel struct {
	Bars                   []Bar           `json:"bars"`
	IsSelfExamination      bool            `json:"isSelfExamination"`
	SubPanel               SubPanel        `json:"subPanel,omitempty"`
	SelectedPart           core.BodyPart   `json:"selectedPart,omitempty"`
	SelectedTourniquetPart core.BodyPart   `json:"selectedTourniquetPart,omitempty"`
	BandageableWounds      []WoundOption   `json:"bandageableWounds,omitempty"`
	TourniquetableWounds   []WoundOption   `json:"tourniquetableWounds,omitempty"`
	AvailableBandages      []AvailableItem `json:"availableBandages,omitempty"`
	AvailableTourniquets   []AvailableItem `json:"availableTourniquets,omitempty"`
	Treatments             []TreatmentRow  `json:"treatments,omitempty"`
}

// ViewModel renders the panel. Sub-panel lists are filled only for the open one.
func (p *Panel) ViewModel() ViewModel {
	p.mu.Lock()
	data := p.data
	sub := p.sub
	vm := ViewModel{
		IsSelfExamination:      data.IsSelfExamination,
		SubPanel:               sub,
		SelectedPart:           p.selectedPart,
		SelectedTourniquetPart: p.selectedTourniquetPart,
	}
	p.mu.Unlock()

	c := NewChart(data)
	vm.Bars = c.Bars()
	switch sub {
	case SubPanelBandage:
		vm.BandageableWounds = c.BandageableWounds()
		vm.AvailableBandages = p.AvailableBandages()
	case SubPanelTourniquet:
		vm.TourniquetableWounds = c.TourniquetableWounds()
		vm.AvailableTourniquets = p.AvailableTourniquets()
	case SubPanelTreatments:
		vm.Treatments = c.TreatmentRows()
	}
	return vm
}
