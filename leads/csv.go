package leads

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/xpertai/sitekit/backend"
)

// csvHeader is the fixed export column order. Tooling downstream matches on
// these exact labels, so they are not derived from struct tags.
var csvHeader = []string{
	"ID", "Full Name", "Email Address", "Phone Number", "Service Category",
	"Specific Services", "Timeline", "Lead Source", "Status", "Created Date",
	"Message/Notes",
}

// GenerateCSV renders the leads as UTF-8 CSV: comma-delimited, every field
// double-quote wrapped with internal quotes doubled. Timestamps are
// reformatted to a combined date+time display string rather than raw ISO.
func GenerateCSV(items []backend.Lead) string {
	var b strings.Builder
	writeRow(&b, csvHeader)
	for _, l := range items {
		writeRow(&b, []string{
			strconv.Itoa(l.ID),
			l.Name,
			l.Email,
			l.Phone,
			l.Service,
			l.SubServices,
			l.Timeline,
			string(l.Source),
			string(l.Status),
			FormatTimestamp(l.CreatedAt),
			l.Message,
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// ParseCSV reads CSV content back into rows, header included. Round-trips
// GenerateCSV output exactly.
func ParseCSV(content string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// FormatTimestamp converts an ISO timestamp to a combined locale date+time
// string ("1/10/2024, 10:00:00 AM"). Unparseable input is returned as-is.
func FormatTimestamp(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("1/2/2006, 3:04:05 PM")
}

// FormatDate is the date-only variant used in summaries.
func FormatDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("1/2/2006")
}
