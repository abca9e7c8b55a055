package services

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

func newPDF(title string) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func pdfRow(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(90, 8, tr(label), "B", 0, "L", false, 0, "")
	pdf.CellFormat(90, 8, tr(value), "B", 1, "R", false, 0, "")
}

func pdfHeading(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(180, 9, tr(text), "", 1, "L", false, 0, "")
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderDashboardPDF writes the dashboard statistics as a one page report.
func RenderDashboardPDF(w io.Writer, stats DashboardStats, settings models.StoreSettings) error {
	pdf, tr := newPDF(settings.StoreName + " dashboard report")
	money := func(v float64) string { return utils.FormatCurrency(v, settings.Currency) }

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(180, 10, tr(settings.StoreName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(180, 6, tr("Generated "+stats.GeneratedAt.Format("02 Jan 2006 15:04")), "", 1, "L", false, 0, "")

	pdfHeading(pdf, tr, "Sales")
	pdfRow(pdf, tr, "Total orders", fmt.Sprint(stats.TotalOrders))
	pdfRow(pdf, tr, "Orders today", fmt.Sprint(stats.TodayOrders))
	pdfRow(pdf, tr, "Total revenue", money(stats.TotalRevenue))
	pdfRow(pdf, tr, "Revenue today", money(stats.TodayRevenue))
	pdfRow(pdf, tr, "Average order value", money(stats.AverageOrderValue))
	pdfRow(pdf, tr, "Average rating", fmt.Sprintf("%.2f / 5", stats.AverageRating))

	pdfHeading(pdf, tr, "Orders by status")
	for _, status := range sortedKeys(stats.OrdersByStatus) {
		pdfRow(pdf, tr, status, fmt.Sprint(stats.OrdersByStatus[status]))
	}
	pdfRow(pdf, tr, "Pending return requests", fmt.Sprint(stats.PendingReturns))

	pdfHeading(pdf, tr, "Reservations")
	for _, status := range sortedKeys(stats.ReservationsByStatus) {
		pdfRow(pdf, tr, status, fmt.Sprint(stats.ReservationsByStatus[status]))
	}
	pdfRow(pdf, tr, "Upcoming", fmt.Sprint(stats.UpcomingReservations))

	pdfHeading(pdf, tr, "Menu and customers")
	pdfRow(pdf, tr, "Menu items", fmt.Sprintf("%d (%d available)", stats.MenuItems, stats.AvailableMenuItems))
	pdfRow(pdf, tr, "Customers", fmt.Sprint(stats.Customers))

	if len(stats.RecentOrders) > 0 {
		pdfHeading(pdf, tr, "Recent orders")
		pdf.SetFont("Helvetica", "B", 10)
		for _, h := range []struct {
			text  string
			width float64
		}{{"Order", 30}, {"Placed", 50}, {"Status", 50}, {"Total", 50}} {
			pdf.CellFormat(h.width, 7, h.text, "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, o := range stats.RecentOrders {
			pdf.CellFormat(30, 7, fmt.Sprintf("#%d", o.ID), "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, o.CreatedAt.Format("02 Jan 15:04"), "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, o.Status, "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, tr(money(o.OrderTotal)), "", 1, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}

// RenderOrderReceiptPDF writes a receipt for one order.
func RenderOrderReceiptPDF(w io.Writer, order models.Order, settings models.StoreSettings) error {
	pdf, tr := newPDF(fmt.Sprintf("Receipt #%d", order.ID))
	money := func(v float64) string { return utils.FormatCurrency(v, settings.Currency) }

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(180, 9, tr(settings.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{settings.Address, settings.ContactPhone, settings.ContactEmail} {
		if line != "" {
			pdf.CellFormat(180, 5, tr(line), "", 1, "C", false, 0, "")
		}
	}

	pdf.Ln(4)
	pdfRow(pdf, tr, "Receipt", fmt.Sprintf("RCP/%s/%06d", order.CreatedAt.Format("20060102"), order.ID))
	pdfRow(pdf, tr, "Date", order.CreatedAt.Format(time.RFC822))
	pdfRow(pdf, tr, "Status", order.Status)
	pdfRow(pdf, tr, "Payment", order.PaymentStatus)

	pdfHeading(pdf, tr, "Items")
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.OrderItems {
		pdf.CellFormat(100, 7, tr(item.MenuItem.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(50, 7, tr(money(item.UnitPrice*float64(item.Quantity))), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdfRow(pdf, tr, "Subtotal", money(order.Subtotal))
	pdfRow(pdf, tr, "Tax", money(order.Tax))
	pdfRow(pdf, tr, "Shipping", money(order.ShippingCost))
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(90, 9, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 9, tr(money(order.OrderTotal)), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}
