package llm

import (
	"fmt"
	"strings"

	"github.com/example/invoice-scanner/pkg/invoice"
)

// SystemPrompt is sent as the system message of every request.
const SystemPrompt = "Eres un asistente experto en procesar facturas y extraer datos estructurados. " +
	"Respondes únicamente con JSON válido."

// BuildPrompt embeds the target fields and the verbatim invoice text in the
// user instruction.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analiza la siguiente factura y extrae la información estructurada en formato JSON.\n")
	b.WriteString("Incluye los siguientes campos si están disponibles:\n")
	for _, f := range invoice.Fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.Key, f.Description)
	}
	b.WriteString("\nTexto de la factura:\n")
	b.WriteString(text)
	b.WriteString("\n\nResponde ÚNICAMENTE con el JSON estructurado, sin texto adicional.")
	return b.String()
}
