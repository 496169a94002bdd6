// Package receipt renders receipt snapshots into a plain-text document.
// The layout mirrors the printed booking receipt; PDF output is a concern
// of the presentation layer, not of this service.
package receipt

import (
	"bytes"
	"text/template"

	"github.com/skopintsev/farebook/internal/domain"
)

var documentTmpl = template.Must(template.New("receipt").Parse(
	`Flight Booking Receipt - PNR: {{.Reference}}
Flight ID: {{.FlightID}}
Seats: {{.Seats}}
Total Price: ${{printf "%.2f" .TotalPrice}}
Booking Time: {{.BookedAt.Format "2006-01-02T15:04:05Z07:00"}}
Passengers:
{{- range .Passengers}}
- {{.Name}}{{if .Age}} | age:{{.Age}}{{end}}{{if .Passport}} | passport:{{.Passport}}{{end}}{{if .Seat}} | seat:{{.Seat}}{{end}}
{{- end}}
`))

func Render(rec *domain.Receipt) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
