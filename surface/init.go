package surface

import (
	"math"
	"strconv"
	"strings"

	"weatherwall/bridge"
	"weatherwall/settings"
)

// InitScript is installed before any page script runs. It seeds
// localStorage and window.userLocation from the settings and reports the
// load event back through the ready binding.
func InitScript(store Settings) string {
	var b strings.Builder
	b.WriteString("(function () {\n")
	for _, c := range credentials {
		v := store.String(c.StorageKey, "")
		if v == "" {
			continue
		}
		b.WriteString("\ttry { localStorage.setItem(")
		b.WriteString(bridge.Quote(c.StorageKey))
		b.WriteString(", ")
		b.WriteString(bridge.Quote(v))
		b.WriteString("); } catch (e) {}\n")
	}
	lat, ok1 := store.Float(settings.KeyLastLat)
	lon, ok2 := store.Float(settings.KeyLastLon)
	if ok1 && ok2 && finite(lat) && finite(lon) {
		b.WriteString("\twindow.userLocation = { name: '', lat: ")
		b.WriteString(strconv.FormatFloat(lat, 'g', -1, 64))
		b.WriteString(", lon: ")
		b.WriteString(strconv.FormatFloat(lon, 'g', -1, 64))
		b.WriteString(" };\n")
	}
	b.WriteString("\twindow.addEventListener('load', function () {\n")
	b.WriteString("\t\tif (window." + readyBinding + ") window." + readyBinding + "();\n")
	b.WriteString("\t});\n")
	b.WriteString("})();\n")
	return b.String()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
