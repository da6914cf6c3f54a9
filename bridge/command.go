package bridge

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Command is a unit of work destined for the rendering surface. Script
// renders it into the JavaScript that the surface evaluates.
type Command interface {
	Kind() string
	Script() (string, error)
}

var (
	ErrNotFinite   = errors.New("bridge: number is not finite")
	ErrBadFunction = errors.New("bridge: not a JavaScript identifier")
)

var identRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\x00", `\x00`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// Quote returns s as a single-quoted JavaScript string literal.
func Quote(s string) string {
	return "'" + quoter.Replace(s) + "'"
}

func number(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", ErrNotFinite
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// SetLocation moves the surface's notion of the user position and fires
// locationUpdated inside the page.
type SetLocation struct {
	Lat, Lon float64
}

func (SetLocation) Kind() string { return "set_location" }

func (c SetLocation) Script() (string, error) {
	lat, err := number(c.Lat)
	if err != nil {
		return "", err
	}
	lon, err := number(c.Lon)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("window.userLocation = { name: '', lat: %s, lon: %s };\n"+
		"window.dispatchEvent(new CustomEvent('locationUpdated', { detail: { latitude: %s, longitude: %s } }));",
		lat, lon, lat, lon), nil
}

// Credential names one of the surface's localStorage credential slots and
// what the page must do to pick up a changed value.
type Credential struct {
	StorageKey string
	Refresh    string
	// MapInit is set when the map library reads the value only at page
	// start, so a page that started without it needs a reload.
	MapInit bool
}

var (
	MapboxToken = Credential{
		StorageKey: "mapbox-access-token",
		Refresh:    "location.reload();",
		MapInit:    true,
	}
	PollenKey = Credential{
		StorageKey: "google-pollen-api-key",
		Refresh:    "if(window.reloadAllergy) window.reloadAllergy();",
	}
)

// SetCredential stores Value in the surface's localStorage. With Refresh the
// credential's refresh script runs afterwards.
type SetCredential struct {
	Credential Credential
	Value      string
	Refresh    bool
}

func (SetCredential) Kind() string { return "set_credential" }

func (c SetCredential) Script() (string, error) {
	js := fmt.Sprintf("localStorage.setItem(%s, %s);", Quote(c.Credential.StorageKey), Quote(c.Value))
	if c.Refresh && c.Credential.Refresh != "" {
		js += " " + c.Credential.Refresh
	}
	return js, nil
}

// ReloadIfUninitialized reloads the page when the map library started
// without an access token.
type ReloadIfUninitialized struct{}

func (ReloadIfUninitialized) Kind() string { return "reload_if_uninitialized" }

func (ReloadIfUninitialized) Script() (string, error) {
	return "if(!window.mapboxgl || !mapboxgl.accessToken) location.reload();", nil
}

// SetZoom flies the camera to a numeric zoom level.
type SetZoom struct {
	Level float64
}

func (SetZoom) Kind() string { return "set_zoom" }

func (c SetZoom) Script() (string, error) {
	level, err := number(c.Level)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("if(window.mapFlyTo) window.mapFlyTo(%s);", level), nil
}

// SetToggle calls a boolean setter exported by the page, if it exists.
type SetToggle struct {
	Func    string
	Enabled bool
}

func (SetToggle) Kind() string { return "set_toggle" }

func (c SetToggle) Script() (string, error) {
	if !identRE.MatchString(c.Func) {
		return "", fmt.Errorf("%w: %q", ErrBadFunction, c.Func)
	}
	return fmt.Sprintf("if(window.%s) window.%s(%t);", c.Func, c.Func, c.Enabled), nil
}

// Script is a pre-rendered script, used for the pre-load init block.
type Script string

func (Script) Kind() string { return "script" }

func (s Script) Script() (string, error) { return string(s), nil }
