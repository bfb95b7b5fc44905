package config

import (
	"fmt"

	"github.com/spf13/viper"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

// PolicyConfig is the declarative side of the engine: category exception
// tables, pot definitions and their overrides, and the rules seeded on an
// empty database. It replaces what would otherwise be special-casing
// scattered through the calculation code.
type PolicyConfig struct {
	Policy    services.Policy
	Pots      []core.PotDefinition
	Overrides []core.PotOverride
	SeedRules []core.RecurringRule
}

// policyFile mirrors the YAML layout. Amounts are decimal strings so the
// file reads like money ("40.00"), not cents.
type policyFile struct {
	AutoCompleteCategories []string `mapstructure:"auto_complete_categories"`
	Skips                  []struct {
		Category string `mapstructure:"category"`
		Month    string `mapstructure:"month"`
	} `mapstructure:"skips"`
	Pots []struct {
		ID           string `mapstructure:"id"`
		DisplayName  string `mapstructure:"display_name"`
		Category     string `mapstructure:"category"`
		TriggerDays  []int  `mapstructure:"trigger_days"`
		DefaultLimit string `mapstructure:"default_limit"`
	} `mapstructure:"pots"`
	Overrides []struct {
		Category string `mapstructure:"category"`
		Month    string `mapstructure:"month"`
		Limit    string `mapstructure:"limit"`
	} `mapstructure:"overrides"`
	SeedRules []struct {
		ID         string `mapstructure:"id"`
		Type       string `mapstructure:"type"`
		Category   string `mapstructure:"category"`
		Amount     string `mapstructure:"amount"`
		Note       string `mapstructure:"note"`
		Account    string `mapstructure:"account"`
		DayOfMonth int    `mapstructure:"day_of_month"`
	} `mapstructure:"seed_rules"`
}

// LoadPolicy reads the policy file. An empty path returns an empty policy:
// no exceptions, no pots, no seeds.
func LoadPolicy(path string) (PolicyConfig, error) {
	var out PolicyConfig
	if path == "" {
		return out, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return out, fmt.Errorf("read policy file: %w", err)
	}

	var raw policyFile
	if err := v.Unmarshal(&raw); err != nil {
		return out, fmt.Errorf("unmarshal policy file: %w", err)
	}

	out.Policy.AutoCompleteCategories = raw.AutoCompleteCategories

	for _, s := range raw.Skips {
		month, err := core.ParseMonth(s.Month)
		if err != nil {
			return PolicyConfig{}, fmt.Errorf("skip for %q: %w", s.Category, err)
		}
		out.Policy.Skips = append(out.Policy.Skips, services.SkipRule{
			Category: s.Category,
			Month:    month,
		})
	}

	for _, p := range raw.Pots {
		limit, err := core.ParseDecimalToCents(p.DefaultLimit)
		if err != nil {
			return PolicyConfig{}, fmt.Errorf("pot %q default limit: %w", p.ID, err)
		}
		pot := core.PotDefinition{
			ID:           p.ID,
			DisplayName:  p.DisplayName,
			Category:     p.Category,
			TriggerDays:  p.TriggerDays,
			DefaultLimit: core.Money{Cents: limit},
		}
		if err := pot.Validate(); err != nil {
			return PolicyConfig{}, fmt.Errorf("pot %q: %w", p.ID, err)
		}
		out.Pots = append(out.Pots, pot)
	}

	for _, o := range raw.Overrides {
		limit, err := core.ParseDecimalToCents(o.Limit)
		if err != nil {
			return PolicyConfig{}, fmt.Errorf("override for %q: %w", o.Category, err)
		}
		override := core.PotOverride{
			Category: o.Category,
			Limit:    core.Money{Cents: limit},
		}
		if o.Month != "" {
			month, err := core.ParseMonth(o.Month)
			if err != nil {
				return PolicyConfig{}, fmt.Errorf("override for %q: %w", o.Category, err)
			}
			override.Month = month
		}
		out.Overrides = append(out.Overrides, override)
	}

	for _, s := range raw.SeedRules {
		amount, err := core.ParseDecimalToCents(s.Amount)
		if err != nil {
			return PolicyConfig{}, fmt.Errorf("seed rule %q amount: %w", s.Category, err)
		}
		rule := core.RecurringRule{
			ID:         s.ID,
			Type:       core.TransactionType(s.Type),
			Category:   s.Category,
			Amount:     core.Money{Cents: amount},
			Note:       s.Note,
			Account:    core.Account(s.Account),
			DayOfMonth: s.DayOfMonth,
			Active:     true,
			Frequency:  core.Monthly,
		}
		if err := rule.Validate(); err != nil {
			return PolicyConfig{}, fmt.Errorf("seed rule %q: %w", s.Category, err)
		}
		out.SeedRules = append(out.SeedRules, rule)
	}

	return out, nil
}
