package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StorefrontConfig carries the branding and passenger-facing copy used on
// boarding passes and their delivery emails.
type StorefrontConfig struct {
	CarrierName  string   `mapstructure:"carrierName"`
	SupportEmail string   `mapstructure:"supportEmail"`
	FlightPrefix string   `mapstructure:"flightPrefix"`
	Instructions []string `mapstructure:"instructions"`
	EmailSubject string   `mapstructure:"emailSubject"`
}

func DefaultStorefrontConfig() StorefrontConfig {
	return StorefrontConfig{
		CarrierName:  "AirLink",
		SupportEmail: "soporte@airlink.com",
		FlightPrefix: "AL",
		Instructions: []string{
			"Present this pass together with your identity document at the check-in counter.",
			"Arrive at the airport 2 hours before departure.",
			"Review the baggage restrictions for your fare.",
		},
		EmailSubject: "Boarding pass - Reservation %s",
	}
}

type StorefrontHolder struct {
	current atomic.Value // holds StorefrontConfig
}

// NewStaticStorefrontHolder returns a holder that never reloads.
func NewStaticStorefrontHolder(cfg StorefrontConfig) *StorefrontHolder {
	holder := &StorefrontHolder{}
	holder.current.Store(withStorefrontDefaults(cfg))
	return holder
}

func NewStorefrontHolder() (*StorefrontHolder, error) {
	v := viper.New()

	v.SetConfigName("storefront")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/airlink")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AIRLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultStorefrontConfig()
	v.SetDefault("storefront.carrierName", defaults.CarrierName)
	v.SetDefault("storefront.supportEmail", defaults.SupportEmail)
	v.SetDefault("storefront.flightPrefix", defaults.FlightPrefix)
	v.SetDefault("storefront.instructions", defaults.Instructions)
	v.SetDefault("storefront.emailSubject", defaults.EmailSubject)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	var cfg StorefrontConfig
	if err := v.UnmarshalKey("storefront", &cfg); err != nil {
		return nil, err
	}
	if err := validateStorefrontConfig(cfg); err != nil {
		return nil, err
	}

	holder := &StorefrontHolder{}
	holder.current.Store(withStorefrontDefaults(cfg))

	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StorefrontConfig
		if err := v.UnmarshalKey("storefront", &updated); err != nil {
			log.Printf("[storefront-config] reload failed: %v", err)
			return
		}
		if err := validateStorefrontConfig(updated); err != nil {
			log.Printf("[storefront-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(withStorefrontDefaults(updated))
		log.Printf("[storefront-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *StorefrontHolder) Get() StorefrontConfig {
	if h == nil {
		return DefaultStorefrontConfig()
	}
	cfg, ok := h.current.Load().(StorefrontConfig)
	if !ok {
		return DefaultStorefrontConfig()
	}
	return cfg
}

func validateStorefrontConfig(cfg StorefrontConfig) error {
	if strings.TrimSpace(cfg.CarrierName) == "" {
		return errors.New("storefront.carrierName cannot be empty")
	}
	if subject := strings.TrimSpace(cfg.EmailSubject); subject != "" && strings.Count(subject, "%s") > 1 {
		return errors.New("storefront.emailSubject accepts at most one %s verb")
	}
	return nil
}

func withStorefrontDefaults(cfg StorefrontConfig) StorefrontConfig {
	defaults := DefaultStorefrontConfig()
	if strings.TrimSpace(cfg.CarrierName) == "" {
		cfg.CarrierName = defaults.CarrierName
	}
	if strings.TrimSpace(cfg.SupportEmail) == "" {
		cfg.SupportEmail = defaults.SupportEmail
	}
	if strings.TrimSpace(cfg.FlightPrefix) == "" {
		cfg.FlightPrefix = defaults.FlightPrefix
	}
	if len(cfg.Instructions) == 0 {
		cfg.Instructions = defaults.Instructions
	}
	if strings.TrimSpace(cfg.EmailSubject) == "" {
		cfg.EmailSubject = defaults.EmailSubject
	}
	return cfg
}
