package tray

import "sync"

type ZoomLevel int

const (
	ZoomGlobe ZoomLevel = iota
	ZoomCountry
	ZoomCity
	ZoomStreet
)

var zoomValues = [...]float64{2.5, 5.0, 8.0, 12.0}

// Value is the camera zoom passed to the page's mapFlyTo.
func (z ZoomLevel) Value() float64 { return zoomValues[z] }

func (z ZoomLevel) valid() bool { return z >= ZoomGlobe && z <= ZoomStreet }

type Layer int

const (
	Flights Layer = iota
	WeatherRadar
	PollenAirQuality
	Labels
	Spin
	layerCount
)

// setters are the page's boolean entry points, indexed by Layer.
var setters = [layerCount]string{
	"setFlightsEnabled",
	"setWeatherEnabled",
	"setPollenEnabled",
	"setLabelsEnabled",
	"setSpinEnabled",
}

func (l Layer) Setter() string { return setters[l] }

// State is the tray's view of what the page shows. Exactly one zoom level is
// active; layers are independent.
type State struct {
	mu     sync.Mutex
	zoom   ZoomLevel
	layers [layerCount]bool
}

// NewState returns the startup state: globe zoom, labels on.
func NewState() *State {
	s := &State{zoom: ZoomGlobe}
	s.layers[Labels] = true
	return s
}

func (s *State) Zoom() ZoomLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

func (s *State) SetZoom(z ZoomLevel) {
	if !z.valid() {
		return
	}
	s.mu.Lock()
	s.zoom = z
	s.mu.Unlock()
}

func (s *State) Enabled(l Layer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers[l]
}

// Flip inverts a layer and returns its new value.
func (s *State) Flip(l Layer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[l] = !s.layers[l]
	return s.layers[l]
}
