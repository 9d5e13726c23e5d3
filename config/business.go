package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Service is one bookable offering. Immutable reference data from config.
type Service struct {
	Name            string  `mapstructure:"name" json:"name"`
	Price           float64 `mapstructure:"price" json:"price"`
	DurationMinutes int     `mapstructure:"duration_minutes" json:"durationMinutes"`
}

// ContactInfo is the business contact block read out to callers.
type ContactInfo struct {
	Phone   string `mapstructure:"phone" json:"phone"`
	Email   string `mapstructure:"email" json:"email"`
	Address string `mapstructure:"address" json:"address"`
}

// WorkingHours holds one hours string per weekday, either
// "H:MM AM - H:MM PM" or "Closed".
type WorkingHours struct {
	Monday    string `mapstructure:"monday" json:"monday"`
	Tuesday   string `mapstructure:"tuesday" json:"tuesday"`
	Wednesday string `mapstructure:"wednesday" json:"wednesday"`
	Thursday  string `mapstructure:"thursday" json:"thursday"`
	Friday    string `mapstructure:"friday" json:"friday"`
	Saturday  string `mapstructure:"saturday" json:"saturday"`
	Sunday    string `mapstructure:"sunday" json:"sunday"`
}

// For returns the hours string for the given weekday.
func (w WorkingHours) For(day time.Weekday) string {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// BusinessConfig is the business identity the receptionist speaks for.
type BusinessConfig struct {
	BusinessName string       `mapstructure:"business_name" json:"businessName"`
	Timezone     string       `mapstructure:"timezone" json:"timezone"`
	ContactInfo  ContactInfo  `mapstructure:"contact_info" json:"contactInfo"`
	WorkingHours WorkingHours `mapstructure:"working_hours" json:"workingHours"`
	Services     []Service    `mapstructure:"services" json:"services"`
}

// FindService matches a service by name, case-insensitively.
func (b *BusinessConfig) FindService(name string) *Service {
	for i := range b.Services {
		if strings.EqualFold(b.Services[i].Name, name) {
			return &b.Services[i]
		}
	}
	return nil
}

// ServiceNames lists the configured service names in order.
func (b *BusinessConfig) ServiceNames() []string {
	names := make([]string, 0, len(b.Services))
	for _, s := range b.Services {
		names = append(names, s.Name)
	}
	return names
}

// HoursForDate resolves the hours string for a YYYY-MM-DD date.
// Unparseable dates resolve to "Closed".
func (b *BusinessConfig) HoursForDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "Closed"
	}
	return b.WorkingHours.For(d.Weekday())
}

var Business BusinessConfig

// loadBusinessConfig reads the "business" block of the config file. Called
// from LoadConfig; defaults describe a small demo salon so the server can
// run without a config file.
func loadBusinessConfig() {
	viper.SetDefault("business.business_name", "Bella Salon")
	viper.SetDefault("business.timezone", "Asia/Karachi")
	viper.SetDefault("business.contact_info.phone", "+92 300 0000000")
	viper.SetDefault("business.contact_info.email", "hello@bellasalon.example")
	viper.SetDefault("business.contact_info.address", "12 Mall Road, Lahore")
	viper.SetDefault("business.working_hours.monday", "9:00 AM - 5:00 PM")
	viper.SetDefault("business.working_hours.tuesday", "9:00 AM - 5:00 PM")
	viper.SetDefault("business.working_hours.wednesday", "9:00 AM - 5:00 PM")
	viper.SetDefault("business.working_hours.thursday", "9:00 AM - 5:00 PM")
	viper.SetDefault("business.working_hours.friday", "9:00 AM - 5:00 PM")
	viper.SetDefault("business.working_hours.saturday", "10:00 AM - 2:00 PM")
	viper.SetDefault("business.working_hours.sunday", "Closed")

	if err := viper.UnmarshalKey("business", &Business); err != nil {
		log.Fatalf("Failed to load business config: %v", err)
	}

	if len(Business.Services) == 0 {
		Business.Services = []Service{
			{Name: "Haircut", Price: 1500, DurationMinutes: 30},
			{Name: "Hair Color", Price: 4500, DurationMinutes: 90},
			{Name: "Facial", Price: 2500, DurationMinutes: 60},
			{Name: "Manicure", Price: 1200, DurationMinutes: 45},
		}
	}
}
