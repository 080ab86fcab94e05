package contract

import "time"

// Capability names the strategy chosen for a prompt. It is decided once per dispatch cycle.
type Capability string

const (
	CapabilityNone       Capability = "none"
	CapabilityWeather    Capability = "weather"
	CapabilityNews       Capability = "news"
	CapabilityCalculator Capability = "calculator"
)

func (c Capability) String() string {
	return string(c)
}

// IsTool reports whether the capability is served by an external handler rather than the model.
func (c Capability) IsTool() bool {
	switch c {
	case CapabilityWeather, CapabilityNews, CapabilityCalculator:
		return true
	default:
		return false
	}
}

type WeatherReport struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Conditions  string  `json:"conditions"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

type Article struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Country     string    `json:"country,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
