package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/tealeg/xlsx"

	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/storage/postgres"
)

// Output formats.
const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

var contentTypes = map[string]string{
	formatCSV:  "text/csv; charset=utf-8",
	formatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var orderHeader = []string{
	"id", "createdAt", "status", "type", "tableId", "customer", "items",
	"subtotal", "serviceCharge", "tax", "discount", "total",
	"paymentMethod", "paymentStatus",
}

// orderRow flattens o. Items become "quantity x name" joined by
// semicolons.
func orderRow(o order.Order) []string {
	items := make([]string, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, strconv.Itoa(l.Quantity)+" x "+l.MenuItem.Name)
	}
	var customer, method string
	if o.Customer != nil {
		customer = o.Customer.Name
	}
	if o.PaymentMethod != nil {
		method = string(o.PaymentMethod.Type)
	}
	return []string{
		o.ID,
		o.CreatedAt.UTC().Format(time.RFC3339),
		string(o.Status),
		string(o.Type),
		o.TableID,
		customer,
		strings.Join(items, "; "),
		o.Subtotal.StringFixed(2),
		o.ServiceCharge.StringFixed(2),
		o.Tax.StringFixed(2),
		o.Discount.StringFixed(2),
		o.Total.StringFixed(2),
		method,
		string(o.PaymentStatus),
	}
}

func summaryRow(t postgres.StatusTotal) []string {
	return []string{string(t.Status), strconv.Itoa(t.Orders), t.Revenue.StringFixed(2)}
}

// writeTable renders header and rows in format.
func writeTable(w io.Writer, format, sheet string, header []string, rows [][]string) error {
	switch format {
	case formatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	case formatXLSX:
		file := xlsx.NewFile()
		sh, err := file.AddSheet(sheet)
		if err != nil {
			return errors.Wrap(err, "add sheet")
		}
		for _, values := range append([][]string{header}, rows...) {
			row := sh.AddRow()
			for _, v := range values {
				row.AddCell().SetString(v)
			}
		}
		return file.Write(w)
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

func writeOrders(w io.Writer, format string, orders []order.Order) error {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRow(o))
	}
	return writeTable(w, format, "Orders", orderHeader, rows)
}

func writeSummary(w io.Writer, format string, totals []postgres.StatusTotal) error {
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, summaryRow(t))
	}
	return writeTable(w, format, "Summary", []string{"status", "orders", "revenue"}, rows)
}
