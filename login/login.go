// Package login registers the application to launch when the user logs in.
package login

import "errors"

// AppName is the value name used for the registration.
const AppName = "WeatherWallpaper"

var ErrUnsupported = errors.New("login: launch at login is not supported on this platform")

// System is the OS registration, usable where an interface is expected.
type System struct{}

func (System) Enabled() bool  { return Enabled() }
func (System) Enable() error  { return Enable() }
func (System) Disable() error { return Disable() }

// Toggle flips the registration and returns the new state. On error the
// state is re-read so the caller sees what the OS actually has.
func Toggle(s interface {
	Enabled() bool
	Enable() error
	Disable() error
}) (bool, error) {
	want := !s.Enabled()
	var err error
	if want {
		err = s.Enable()
	} else {
		err = s.Disable()
	}
	if err != nil {
		return s.Enabled(), err
	}
	return want, nil
}
