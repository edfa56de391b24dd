package mapview

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/pkg/browser"
)

var (
	// ErrNoLocation is returned for results that carry no coordinates
	ErrNoLocation = errors.New("location data not available for this IP")

	// ErrOpenFailed means the map was written but the browser could not show it
	ErrOpenFailed = errors.New("failed to open map in browser")
)

// fileTimeLayout gives ip_map_YYYYMMDD_HHMMSS.html
const fileTimeLayout = "20060102_150405"

// zoomLevel matches a city-scale view around the marker
const zoomLevel = 10

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>IP {{.IP}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.Latitude}}, {{.Longitude}}], {{.Zoom}});
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  maxZoom: 19,
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
var popup = document.createElement("div");
popup.style.whiteSpace = "pre-line";
popup.textContent = {{.Popup}};
L.marker([{{.Latitude}}, {{.Longitude}}]).addTo(map).bindPopup(popup);
</script>
</body>
</html>
`))

type pageData struct {
	IP        string
	Latitude  float64
	Longitude float64
	Zoom      int
	Popup     string
}

// Writer renders single-marker HTML maps into a directory.
// Files are never cleaned up.
type Writer struct {
	Dir  string                 // output directory, "." when empty
	Now  func() time.Time       // clock used for the file name
	Open func(path string) error // called with the written path; nil skips opening
}

// NewWriter returns a Writer for dir that opens every map in the default browser
// when openBrowser is true
func NewWriter(dir string, openBrowser bool) *Writer {
	w := &Writer{Dir: dir, Now: time.Now}
	if openBrowser {
		w.Open = browser.OpenFile
	}
	return w
}

// Write renders the map for result and returns the file path.
// Two maps written in the same second share a name; the later one wins.
func (w *Writer) Write(result *models.LookupResult) (string, error) {
	if result == nil || !result.HasCoordinates() {
		return "", ErrNoLocation
	}

	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	name := fmt.Sprintf("ip_map_%s.html", now().Format(fileTimeLayout))
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve map path: %w", err)
	}

	data := pageData{
		IP:        result.IP,
		Latitude:  *result.Latitude,
		Longitude: *result.Longitude,
		Zoom:      zoomLevel,
		Popup:     Popup(result),
	}
	if err := writePage(path, pageTemplate, data); err != nil {
		return "", err
	}

	if w.Open != nil {
		if err := w.Open(path); err != nil {
			return path, fmt.Errorf("%w: %s: %v", ErrOpenFailed, path, err)
		}
	}
	return path, nil
}

// writePage renders data into path; a failed render leaves no file behind
func writePage(path string, tmpl *template.Template, data pageData) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}

	renderErr := tmpl.Execute(file, data)
	closeErr := file.Close()
	if renderErr != nil || closeErr != nil {
		os.Remove(path)
		if renderErr != nil {
			return fmt.Errorf("failed to render map: %w", renderErr)
		}
		return fmt.Errorf("failed to write map file: %w", closeErr)
	}
	return nil
}

// Popup is the marker text, shown as plain text: the IP, then city, region and country
func Popup(result *models.LookupResult) string {
	return fmt.Sprintf("IP: %s\nCity: %s, %s, %s", result.IP, result.City, result.Region, result.Country)
}
