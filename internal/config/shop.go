package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed shop.yaml
var defaultShopYAML []byte

// Localized holds one string per locale code.
type Localized map[string]string

// In returns the text for lang, falling back to English and then to any value.
func (l Localized) In(lang string) string {
	if v, ok := l[lang]; ok && v != "" {
		return v
	}
	if v, ok := l["en"]; ok && v != "" {
		return v
	}
	for _, v := range l {
		return v
	}
	return ""
}

type Zone struct {
	ID    string    `yaml:"id"`
	Names Localized `yaml:"names"`
	Price int64     `yaml:"price"`
}

type TimeSlot struct {
	ID     string    `yaml:"id"`
	Labels Localized `yaml:"labels"`
}

type ShopConfig struct {
	Name      string     `yaml:"name"`
	Phone     string     `yaml:"phone"`
	WhatsApp  string     `yaml:"whatsapp"`
	LineID    string     `yaml:"line_id"`
	Address   Localized  `yaml:"address"`
	Hours     Localized  `yaml:"hours"`
	Latitude  float64    `yaml:"latitude"`
	Longitude float64    `yaml:"longitude"`
	Zones     []Zone     `yaml:"zones"`
	TimeSlots []TimeSlot `yaml:"time_slots"`
}

// LoadShop reads the shop table from path, or the embedded default when path is empty.
func LoadShop(path string) (*ShopConfig, error) {
	data := defaultShopYAML
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read shop config: %w", err)
		}
		data = raw
	}

	var shop ShopConfig
	if err := yaml.Unmarshal(data, &shop); err != nil {
		return nil, fmt.Errorf("parse shop config: %w", err)
	}

	if err := shop.validate(); err != nil {
		return nil, err
	}

	return &shop, nil
}

func (s *ShopConfig) validate() error {
	if len(s.Zones) == 0 {
		return fmt.Errorf("shop config: at least one delivery zone is required")
	}
	seen := make(map[string]struct{}, len(s.Zones))
	for _, z := range s.Zones {
		if z.ID == "" {
			return fmt.Errorf("shop config: zone without id")
		}
		if z.Price < 0 {
			return fmt.Errorf("shop config: zone %s has negative price", z.ID)
		}
		if _, dup := seen[z.ID]; dup {
			return fmt.Errorf("shop config: duplicate zone %s", z.ID)
		}
		seen[z.ID] = struct{}{}
	}
	for _, t := range s.TimeSlots {
		if t.ID == "" || t.ID == "other" {
			return fmt.Errorf("shop config: invalid time slot id %q", t.ID)
		}
	}
	return nil
}

func (s *ShopConfig) Zone(id string) (Zone, bool) {
	for _, z := range s.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

func (s *ShopConfig) TimeSlot(id string) (TimeSlot, bool) {
	for _, t := range s.TimeSlots {
		if t.ID == id {
			return t, true
		}
	}
	return TimeSlot{}, false
}
