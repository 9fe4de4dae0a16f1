package csvout

// writer.go — persistencia de FeatureTables como texto delimitado.
//
// El nombre del archivo sigue el patrón descubrible {TICKER}_options_trades_*
// que espera el paso de merge aguas abajo (left-join por date,ticker). Para
// ese merge una fila ausente significa "sin actividad de opciones", y rellena
// las columnas numéricas con cero — ausente ≠ error.

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/optflow/internal/domain"
)

const dateLayout = "2006-01-02"

// Writer escribe tablas de features en un directorio.
type Writer struct {
	dir string
}

// NewWriter crea un Writer que escribe en el directorio dado.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write persiste la tabla y devuelve la ruta escrita. Una tabla vacía se
// escribe igualmente — solo cabecera — para que el consumidor distinga
// "sin días que cualifiquen" de "run que nunca ocurrió".
func (w *Writer) Write(table *domain.FeatureTable) (string, error) {
	path := filepath.Join(w.dir, Filename(table))

	if err := os.WriteFile(path, []byte(Render(table)), 0o644); err != nil {
		return "", fmt.Errorf("csvout.Write: %w", err)
	}

	slog.Info("feature table written",
		"path", path,
		"rows", len(table.Rows),
	)
	return path, nil
}

// Filename deriva el nombre del archivo del modo de la tabla.
func Filename(table *domain.FeatureTable) string {
	if table.HasExpiry {
		return fmt.Sprintf("%s_options_trades_around_%s.csv",
			table.Ticker, table.Expiry.Format(dateLayout))
	}
	return fmt.Sprintf("%s_options_trades_%s_%s.csv",
		table.Ticker, table.Start.Format(dateLayout), table.End.Format(dateLayout))
}

// Render serializa la tabla como CSV con el orden fijo de columnas.
func Render(table *domain.FeatureTable) string {
	var sb strings.Builder

	sb.WriteString(strings.Join(table.Columns(), ","))
	sb.WriteByte('\n')

	for _, r := range table.Rows {
		sb.WriteString(r.Date.Format(dateLayout))
		sb.WriteByte(',')
		sb.WriteString(r.Ticker)
		if table.HasExpiry {
			sb.WriteByte(',')
			sb.WriteString(r.Expiry.Format(dateLayout))
		}
		sb.WriteString(fmt.Sprintf(",%d,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			r.TradesCount,
			r.Notional,
			r.AvgPrice,
			r.PriceStdDev,
			r.MinPrice,
			r.MaxPrice,
		))
	}

	return sb.String()
}
