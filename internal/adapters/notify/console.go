package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier imprimiendo la tabla construida.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resumen en el modo configurado. Una tabla vacía es un
// resultado válido, no un error: ningún día del rango superó el umbral.
func (c *Console) Notify(_ context.Context, t *domain.FeatureTable) error {
	if len(t.Rows) == 0 {
		fmt.Fprintf(c.out, "[%s] %s: no qualifying days in %s → %s\n",
			time.Now().Format("15:04:05"), t.Ticker,
			t.Start.Format("2006-01-02"), t.End.Format("2006-01-02"))
		return nil
	}

	if c.table {
		c.printFull(t)
	} else {
		c.printCompact(t)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(t *domain.FeatureTable) {
	var trades int
	var notional float64
	for _, r := range t.Rows {
		trades += r.TradesCount
		notional += r.Notional
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s %d rows %s→%s trades:%d notional:$%.2f",
		time.Now().Format("15:04:05"), t.Ticker, len(t.Rows),
		t.Rows[0].Date.Format("2006-01-02"),
		t.Rows[len(t.Rows)-1].Date.Format("2006-01-02"),
		trades, notional,
	)
	if t.HasExpiry {
		fmt.Fprintf(&sb, " expiry:%s", t.Expiry.Format("2006-01-02"))
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa, una fila por día.
func (c *Console) printFull(t *domain.FeatureTable) {
	fmt.Fprintf(c.out, "\n[%s] %s — %d qualifying days of %s → %s\n",
		time.Now().Format("15:04:05"), t.Ticker, len(t.Rows),
		t.Start.Format("2006-01-02"), t.End.Format("2006-01-02"))

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Trades", "Notional", "Avg", "Std", "Min", "Max")

	for _, r := range t.Rows {
		table.Append(
			r.Date.Format("2006-01-02"),
			fmt.Sprintf("%d", r.TradesCount),
			fmt.Sprintf("$%.2f", r.Notional),
			fmt.Sprintf("%.4f", r.AvgPrice),
			fmt.Sprintf("%.4f", r.PriceStdDev),
			fmt.Sprintf("%.4f", r.MinPrice),
			fmt.Sprintf("%.4f", r.MaxPrice),
		)
	}
	table.Render()
}
