// pkg/core/catalog.go
package core

import "sort"

// ItemKind groups catalog items by the treatment they provide.
type ItemKind string

const (
	KindBandage    ItemKind = "bandage"
	KindTourniquet ItemKind = "tourniquet"
	KindMedicine   ItemKind = "medicine"
	KindInjection  ItemKind = "injection"
)

// Item is a usable medical item.
type Item struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"desc,omitempty"`
	ItemName      string `json:"itemname"`
	Effectiveness int    `json:"effectiveness,omitempty"`
	RiskLevel     string `json:"riskLevel,omitempty"`
	MaxDuration   int    `json:"maxDuration,omitempty"` // seconds
}

// ItemConfig is an item entry as sent by the host in medical-config-data.
type ItemConfig struct {
	Label         string `json:"label"`
	Description   string `json:"description,omitempty"`
	ItemName      string `json:"itemName"`
	Effectiveness int    `json:"effectiveness,omitempty"`
	RiskLevel     string `json:"riskLevel,omitempty"`
	MaxDuration   int    `json:"maxDuration,omitempty"`
}

// Catalog holds the items offered in each treatment view.
type Catalog struct {
	Bandages    []Item                      `json:"bandages"`
	Tourniquets []Item                      `json:"tourniquets"`
	Medicines   []Item                      `json:"medicines"`
	Injections  []Item                      `json:"injections"`
	BodyParts   map[BodyPart]BodyPartConfig `json:"bodyParts,omitempty"`
}

// Items returns the item list of a kind.
func (c Catalog) Items(kind ItemKind) []Item {
	switch kind {
	case KindBandage:
		return c.Bandages
	case KindTourniquet:
		return c.Tourniquets
	case KindMedicine:
		return c.Medicines
	case KindInjection:
		return c.Injections
	}
	return nil
}

// Find looks up an item by id within a kind.
func (c Catalog) Find(kind ItemKind, id string) (Item, bool) {
	for _, it := range c.Items(kind) {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// PartLabel returns the configured label for a part, falling back to the built-in one.
func (c Catalog) PartLabel(p BodyPart) string {
	if cfg, ok := c.BodyParts[p]; ok && cfg.Label != "" {
		return cfg.Label
	}
	return p.Label()
}

// DefaultCatalog is used until the host sends its configuration.
func DefaultCatalog() Catalog {
	return Catalog{
		Bandages: []Item{
			{ID: "cloth", Name: "Cloth Strip", Description: "Basic cloth strip - crude but available", ItemName: "cloth_band", Effectiveness: 60},
			{ID: "cotton", Name: "Cotton Bandage", Description: "Standard cotton bandage - reliable frontier medicine", ItemName: "cotton_band", Effectiveness: 75},
			{ID: "linen", Name: "Linen Wrap", Description: "Quality linen wrap - superior absorbency", ItemName: "linen_band", Effectiveness: 85},
			{ID: "sterile", Name: "Sterilized Gauze", Description: "Professional medical gauze - sterile and effective", ItemName: "sterile_band", Effectiveness: 95},
		},
		Tourniquets: []Item{
			{ID: "rope", Name: "Rope Tourniquet", Description: "Improvised rope tourniquet - rough but effective", ItemName: "tourniquet_rope", Effectiveness: 70},
			{ID: "leather", Name: "Leather Strap", Description: "Leather strap tourniquet - durable frontier solution", ItemName: "tourniquet_leather", Effectiveness: 75},
			{ID: "cloth", Name: "Cloth Tourniquet", Description: "Cloth tourniquet - basic emergency bleeding control", ItemName: "tourniquet_cloth", Effectiveness: 65},
			{ID: "medical", Name: "Medical Tourniquet", Description: "Professional medical tourniquet - hospital grade", ItemName: "tourniquet_medical", Effectiveness: 95},
		},
		Medicines: []Item{
			{ID: "laudanum", Name: "Laudanum", Description: "Opium-based painkiller - powerful but addictive", ItemName: "medicine_laudanum", Effectiveness: 85},
			{ID: "morphine", Name: "Morphine Powder", Description: "Powerful opiate analgesic - strongest painkiller available", ItemName: "medicine_morphine", Effectiveness: 95},
			{ID: "whiskey", Name: "Medicinal Whiskey", Description: "Alcohol-based antiseptic and anesthetic - frontier medicine", ItemName: "medicine_whiskey", Effectiveness: 60},
			{ID: "quinine", Name: "Quinine Powder", Description: "Antimalarial and fever reducer - specialized treatment", ItemName: "medicine_quinine", Effectiveness: 70},
		},
		Injections: []Item{
			{ID: "adrenaline", Name: "Adrenaline Shot", Description: "Cardiac stimulant for emergency resuscitation - use with extreme caution", ItemName: "injection_adrenaline", RiskLevel: "high"},
			{ID: "cocaine", Name: "Cocaine Solution", Description: "Local anesthetic for surgical procedures - numbs pain effectively", ItemName: "injection_cocaine", RiskLevel: "medium"},
			{ID: "strychnine", Name: "Strychnine (Micro)", Description: "Stimulant for paralysis and respiratory failure - extremely dangerous", ItemName: "injection_strychnine", RiskLevel: "extreme"},
			{ID: "saline", Name: "Salt Water", Description: "Hydration and blood volume replacement - safe basic treatment", ItemName: "injection_saline", RiskLevel: "low"},
		},
	}
}

// CatalogConfig is the host's medical-config-data payload.
type CatalogConfig struct {
	BandageTypes    map[string]ItemConfig       `json:"bandageTypes,omitempty"`
	TourniquetTypes map[string]ItemConfig       `json:"tourniquetTypes,omitempty"`
	MedicineTypes   map[string]ItemConfig       `json:"medicineTypes,omitempty"`
	InjectionTypes  map[string]ItemConfig       `json:"injectionTypes,omitempty"`
	BodyParts       map[BodyPart]BodyPartConfig `json:"bodyParts,omitempty"`
}

// Merge builds a catalog from the host configuration. Kinds the host leaves
// empty keep the entries of base.
func (cfg CatalogConfig) Merge(base Catalog) Catalog {
	out := base
	if len(cfg.BandageTypes) > 0 {
		out.Bandages = fromConfig(cfg.BandageTypes, itemDefaults{name: "Unknown Bandage", effectiveness: 50})
	}
	if len(cfg.TourniquetTypes) > 0 {
		out.Tourniquets = fromConfig(cfg.TourniquetTypes, itemDefaults{name: "Unknown Tourniquet", effectiveness: 70, maxDuration: 1200})
	}
	if len(cfg.MedicineTypes) > 0 {
		out.Medicines = fromConfig(cfg.MedicineTypes, itemDefaults{name: "Unknown Medicine", effectiveness: 50})
	}
	if len(cfg.InjectionTypes) > 0 {
		out.Injections = fromConfig(cfg.InjectionTypes, itemDefaults{name: "Unknown Injection", risk: "medium"})
	}
	if len(cfg.BodyParts) > 0 {
		out.BodyParts = cfg.BodyParts
	}
	return out
}

// itemDefaults fill fields the host left empty.
type itemDefaults struct {
	name          string
	effectiveness int
	risk          string
	maxDuration   int
}

func fromConfig(m map[string]ItemConfig, def itemDefaults) []Item {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]Item, 0, len(m))
	for _, id := range ids {
		c := m[id]
		it := Item{
			ID:            id,
			Name:          c.Label,
			Description:   c.Description,
			ItemName:      c.ItemName,
			Effectiveness: c.Effectiveness,
			RiskLevel:     c.RiskLevel,
			MaxDuration:   c.MaxDuration,
		}
		if it.Name == "" {
			it.Name = def.name
		}
		if it.ItemName == "" {
			it.ItemName = id
		}
		if it.Effectiveness == 0 {
			it.Effectiveness = def.effectiveness
		}
		if it.RiskLevel == "" {
			it.RiskLevel = def.risk
		}
		if it.MaxDuration == 0 {
			it.MaxDuration = def.maxDuration
		}
		items = append(items, it)
	}
	return items
}
