package invoice

// Field is a target key the model is asked to fill in. The list is a hint to the
// model, not a schema: results may omit any of them or add others.
type Field struct {
	Key         string
	Description string
}

// Field keys, in the invoice's working language.
const (
	FieldInvoiceNumber = "numero_factura"
	FieldDate          = "fecha"
	FieldSeller        = "vendedor"
	FieldBuyer         = "cliente"
	FieldItems         = "items"
	FieldSubtotal      = "subtotal"
	FieldTaxes         = "impuestos"
	FieldTotal         = "total"
	FieldPaymentMethod = "metodo_pago"
	FieldNotes         = "notas"
)

// Fields lists the target fields in prompt order.
var Fields = []Field{
	{FieldInvoiceNumber, "número de la factura"},
	{FieldDate, "fecha de emisión"},
	{FieldSeller, "información del vendedor (nombre, dirección, CIF/NIF)"},
	{FieldBuyer, "información del cliente (nombre, dirección, CIF/NIF)"},
	{FieldItems, "lista de productos/servicios con descripción, cantidad, precio_unitario, y total"},
	{FieldSubtotal, "subtotal antes de impuestos"},
	{FieldTaxes, "información de impuestos (tipo, porcentaje, monto)"},
	{FieldTotal, "monto total de la factura"},
	{FieldPaymentMethod, "método de pago si está disponible"},
	{FieldNotes, "cualquier nota o información adicional"},
}

// Result is the structured invoice returned by the model. Values keep whatever
// JSON type the model produced; numbers are json.Number.
type Result map[string]any

// MissingFields returns the keys of Fields absent from r, in prompt order
func (r Result) MissingFields() []string {
	var missing []string
	for _, f := range Fields {
		if _, ok := r[f.Key]; !ok {
			missing = append(missing, f.Key)
		}
	}
	return missing
}
