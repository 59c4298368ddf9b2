// internal/scan/scan.go
//
// QR scan-event capture.
//
// Context
// -------
// Every public token lookup is, almost always, a customer pointing a phone
// at a printed code.  The Recorder turns that request into one row of
// per-hive analytics: parsed user-agent facts (uasurfer) and best-effort
// geolocation (MaxMind, optional).  Recording is fire-and-forget: a failed
// insert is logged and the page still renders; analytics must never break
// the lookup path.
//
// Notes
// -----
// • Geo lookup is skipped entirely when no MaxMind database is configured.
// • Oxford commas, two spaces after periods.
package scan

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/jmoiron/sqlx"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/apiarylabs/hivetag/internal/metrics"
)

// Event mirrors one row in the `scan_event` table.
type Event struct {
	ID           int64     `db:"id"`
	SerialNumber string    `db:"serial_number"`
	ScannedAt    time.Time `db:"scanned_at"`
	Browser      string    `db:"browser"`
	OS           string    `db:"os"`
	Device       string    `db:"device"`
	IsBot        bool      `db:"is_bot"`
	CountryISO   string    `db:"country_iso"`
	City         string    `db:"city"`
}

// Recorder persists scan events.  geo may be nil.
type Recorder struct {
	db  *sqlx.DB
	geo *geoip2.Reader
	log *zap.SugaredLogger
}

// NewRecorder opens the optional MaxMind database at geoPath ("" disables
// geolocation) and returns a ready Recorder.
func NewRecorder(db *sqlx.DB, geoPath string, log *zap.SugaredLogger) (*Recorder, error) {
	r := &Recorder{db: db, log: log}
	if geoPath != "" {
		geo, err := geoip2.Open(geoPath)
		if err != nil {
			return nil, err
		}
		r.geo = geo
	}
	return r, nil
}

// Close releases the MaxMind handle, if any.
func (r *Recorder) Close() {
	if r.geo != nil {
		_ = r.geo.Close()
	}
}

// Record stores one scan event for serial, derived from req.  Best effort:
// errors are logged, never returned.
func (r *Recorder) Record(ctx context.Context, serial string, req *http.Request) {
	ev := r.eventFrom(serial, req)

	const q = `
	    INSERT INTO scan_event
	           (serial_number, scanned_at, browser, os, device, is_bot, country_iso, city)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		ev.SerialNumber, ev.ScannedAt, ev.Browser, ev.OS, ev.Device,
		ev.IsBot, ev.CountryISO, ev.City)
	if err != nil {
		r.log.Warnw("scan event insert failed", "serial", serial, "err", err)
		return
	}
	metrics.ScanEventsTotal.Inc()
}

// BySerial returns the newest events for one hive, newest first.
func (r *Recorder) BySerial(ctx context.Context, serial string, limit int) ([]Event, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	const q = `
	    SELECT id, serial_number, scanned_at, browser, os, device, is_bot, country_iso, city
	      FROM scan_event
	     WHERE serial_number = ?
	  ORDER BY scanned_at DESC, id DESC
	     LIMIT ?`
	rows := make([]Event, 0, limit)
	if err := r.db.SelectContext(ctx, &rows, q, serial, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// eventFrom assembles the row without touching storage.
func (r *Recorder) eventFrom(serial string, req *http.Request) Event {
	ua := uasurfer.Parse(req.UserAgent())

	ev := Event{
		SerialNumber: serial,
		ScannedAt:    time.Now().UTC(),
		Browser:      strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		OS:           osName(ua.OS.Name),
		Device:       deviceName(ua.DeviceType),
		IsBot:        ua.IsBot(),
	}

	if r.geo != nil {
		if ip := clientIP(req); ip != nil {
			if rec, err := r.geo.City(ip); err == nil {
				ev.CountryISO = rec.Country.IsoCode
				ev.City = rec.City.Names["en"]
			}
		}
	}
	return ev
}

// osName strips the uasurfer enum prefix and normalises macOS.
func osName(n uasurfer.OSName) string {
	s := strings.TrimPrefix(n.String(), "OS")
	if s == "MacOSX" {
		s = "macOS"
	}
	return s
}

// deviceName maps uasurfer.DeviceType to a user-friendly string.
func deviceName(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection address.
func clientIP(req *http.Request) net.IP {
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return net.ParseIP(req.RemoteAddr)
	}
	return net.ParseIP(host)
}
