package trip

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/jung-kurt/gofpdf"

	"github.com/roamio/roamio-api/internal/types"
)

// csvRouteRow flattens one leg of one route for spreadsheet export.
type csvRouteRow struct {
	Strategy      string  `csv:"strategy"`
	LegIndex      int     `csv:"leg"`
	From          string  `csv:"from"`
	To            string  `csv:"to"`
	DistanceKm    float64 `csv:"distance_km"`
	DurationHours float64 `csv:"duration_hours"`
	Source        string  `csv:"source"`
}

// ExportCSV renders every leg of every route as CSV.
func ExportCSV(plan *types.TripPlan) ([]byte, error) {
	var rows []csvRouteRow
	for _, route := range plan.Routes {
		for i, leg := range route.Legs {
			rows = append(rows, csvRouteRow{
				Strategy:      string(route.Strategy),
				LegIndex:      i + 1,
				From:          leg.From,
				To:            leg.To,
				DistanceKm:    leg.DistanceKm,
				DurationHours: leg.DurationHours,
				Source:        route.Source,
			})
		}
	}

	b, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encoding plan %s as csv: %w", plan.ID, err)
	}
	return b, nil
}

// ExportPDF renders a printable itinerary: one section per route plus an
// enrichment summary per stop when present.
func ExportPDF(plan *types.TripPlan) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Header bar
	pdf.SetFillColor(22, 48, 74)
	pdf.Rect(0, 0, 210, 26, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 7)
	pdf.CellFormat(100, 10, "Roamio", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(20, 16)
	pdf.CellFormat(170, 6, "European Road Trip Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(32)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(170, 5, fmt.Sprintf("Plan %s - generated %s", plan.ID, plan.CreatedAt.Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	sectionHeader := func(title string) {
		pdf.SetFillColor(22, 48, 74)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 6, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 6, value, "", 1, "L", false, 0, "")
	}

	for _, route := range plan.Routes {
		sectionHeader(fmt.Sprintf("%s route: %s to %s", titleCase(string(route.Strategy)), route.Start.Name, route.End.Name))
		row("Distance", fmt.Sprintf("%.0f km", route.DistanceKm))
		row("Driving time", fmt.Sprintf("%.1f hours", route.DurationHours))
		row("Estimated cost", fmt.Sprintf("EUR %.0f", route.CostEstimate))
		if len(route.Waypoints) > 0 {
			names := make([]string, len(route.Waypoints))
			for i, w := range route.Waypoints {
				names[i] = w.Name
			}
			row("Via", strings.Join(names, ", "))
		}
		pdf.Ln(3)
	}

	if len(plan.Stops) > 0 {
		sectionHeader("Stop highlights")
		for _, stop := range plan.Stops {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(170, 6, stop.City.Name+", "+stop.City.Country, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			if stop.Weather != nil {
				pdf.CellFormat(170, 5, fmt.Sprintf("Weather: %.0fC, %s", stop.Weather.Current.Temperature, stop.Weather.Current.Conditions), "", 1, "L", false, 0, "")
			}
			if stop.Hotels != nil && len(stop.Hotels.Hotels) > 0 {
				h := stop.Hotels.Hotels[0]
				pdf.CellFormat(170, 5, fmt.Sprintf("Stay from: %s (EUR %.0f/night)", h.Name, h.PricePerNight), "", 1, "L", false, 0, "")
			}
			if stop.Attractions != nil && len(stop.Attractions.Places) > 0 {
				pdf.CellFormat(170, 5, "Top sight: "+stop.Attractions.Places[0].Name, "", 1, "L", false, 0, "")
			}
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering plan %s as pdf: %w", plan.ID, err)
	}
	return buf.Bytes(), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
