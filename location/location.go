// Package location acquires the user's coordinates, either from an
// IP-geolocation lookup or from a free-text place search, and applies them to
// the surface and the settings store. Every failure is logged and reported as
// "no result"; nothing here returns an error to the caller.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weatherwall/bridge"
	"weatherwall/config"
	"weatherwall/log"
	"weatherwall/prompt"
	"weatherwall/settings"
)

const DefaultTimeout = 10 * time.Second

type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// coord decodes a JSON number or a numeric string. ipapi.co has returned
// both over time.
type coord struct {
	v   float64
	set bool
}

func (c *coord) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n json.Number
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n = json.Number(strings.TrimSpace(s))
	} else {
		n = json.Number(b)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("coordinate %s: %w", b, err)
	}
	c.v, c.set = f, true
	return nil
}

type ipResponse struct {
	Latitude  coord  `json:"latitude"`
	Longitude coord  `json:"longitude"`
	City      string `json:"city"`
	Error     bool   `json:"error"`
	Reason    string `json:"reason"`
}

type geocodeResponse struct {
	Results []struct {
		Name      string `json:"name"`
		Country   string `json:"country"`
		Latitude  coord  `json:"latitude"`
		Longitude coord  `json:"longitude"`
	} `json:"results"`
}

// Store is the part of the settings store the resolver writes to.
type Store interface {
	SetMany(values map[string]any) error
}

type Resolver struct {
	ipEndpoint      string
	geocodeEndpoint string
	client          *tracedClient
	bridge          bridge.Submitter
	store           Store
	prompter        prompt.Prompter
}

type Option func(*Resolver)

func WithEndpoints(ip, geocode string) Option {
	return func(r *Resolver) {
		if ip != "" {
			r.ipEndpoint = ip
		}
		if geocode != "" {
			r.geocodeEndpoint = geocode
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.client = newTracedClient(d)
		}
	}
}

func WithPrompter(p prompt.Prompter) Option {
	return func(r *Resolver) { r.prompter = p }
}

func New(b bridge.Submitter, store Store, opts ...Option) *Resolver {
	r := &Resolver{
		ipEndpoint:      config.DefaultIPEndpoint,
		geocodeEndpoint: config.DefaultGeocodeEndpoint,
		client:          newTracedClient(DefaultTimeout),
		bridge:          b,
		store:           store,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FromIP looks up the machine's public-IP location.
func (r *Resolver) FromIP(ctx context.Context) (Coordinates, bool) {
	var resp ipResponse
	m, err := r.client.getJSON(ctx, r.ipEndpoint, &resp)
	m.log("ip")
	if err != nil {
		log.Warnf("location: ip lookup: %v", err)
		return Coordinates{}, false
	}
	if resp.Error {
		log.Warnf("location: ip lookup refused: %s", resp.Reason)
		return Coordinates{}, false
	}
	if !resp.Latitude.set || !resp.Longitude.set {
		log.Warn("location: ip lookup returned no coordinates")
		return Coordinates{}, false
	}
	c := Coordinates{Lat: resp.Latitude.v, Lon: resp.Longitude.v}
	if !c.valid() {
		log.Warnf("location: ip lookup returned out-of-range coordinates %s", c)
		return Coordinates{}, false
	}
	return c, true
}

// Search geocodes query and returns the first candidate. A blank query
// returns false without a request.
func (r *Resolver) Search(ctx context.Context, query string) (Coordinates, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Coordinates{}, false
	}
	u, err := url.Parse(r.geocodeEndpoint)
	if err != nil {
		log.Errorf("location: geocode endpoint %q: %v", r.geocodeEndpoint, err)
		return Coordinates{}, false
	}
	q := u.Query()
	q.Set("name", query)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	var resp geocodeResponse
	m, err := r.client.getJSON(ctx, u.String(), &resp)
	m.log("search")
	if err != nil {
		log.Warnf("location: search %q: %v", query, err)
		return Coordinates{}, false
	}
	if len(resp.Results) == 0 {
		log.Infof("location: no match for %q", query)
		return Coordinates{}, false
	}
	first := resp.Results[0]
	if !first.Latitude.set || !first.Longitude.set {
		log.Warnf("location: match for %q has no coordinates", query)
		return Coordinates{}, false
	}
	c := Coordinates{Lat: first.Latitude.v, Lon: first.Longitude.v}
	if !c.valid() {
		log.Warnf("location: match for %q out of range: %s", query, c)
		return Coordinates{}, false
	}
	log.Infof("location: %q resolved to %s, %s", query, first.Name, first.Country)
	return c, true
}

// Apply pushes c to the surface and persists it as the last known location.
func (r *Resolver) Apply(c Coordinates) {
	r.bridge.Submit(bridge.SetLocation{Lat: c.Lat, Lon: c.Lon})
	if r.store == nil {
		return
	}
	err := r.store.SetMany(map[string]any{
		settings.KeyLastLat: c.Lat,
		settings.KeyLastLon: c.Lon,
	})
	if err != nil {
		log.Errorf("location: persist %s: %v", c, err)
	}
}

// Refresh runs the IP path and applies a result.
func (r *Resolver) Refresh(ctx context.Context) bool {
	c, ok := r.FromIP(ctx)
	log.Location("ip", c.Lat, c.Lon, ok)
	if ok {
		r.Apply(c)
	}
	return ok
}

// SearchInteractive asks for a place name and applies the first match.
// Cancel and blank input are ignored.
func (r *Resolver) SearchInteractive(ctx context.Context) bool {
	if r.prompter == nil {
		return false
	}
	query, ok := prompt.AskTrimmed(r.prompter, prompt.Request{
		Title:   "Search Location",
		Message: "Enter a city or place name:",
	})
	if !ok {
		return false
	}
	c, ok := r.Search(ctx, query)
	log.Location("search", c.Lat, c.Lon, ok)
	if ok {
		r.Apply(c)
	}
	return ok
}
