package quote

import (
	"fmt"
	"strings"

	"github.com/dulcelimon/pasteleria/internal/catalog"
	"github.com/dulcelimon/pasteleria/internal/money"
	"github.com/dulcelimon/pasteleria/internal/pricing"
)

// BusinessProfile is the letterhead of the quote.
type BusinessProfile struct {
	Name  string
	Phone string
}

const divider = "━━━━━━━━━━━━━━━━━━━━"

// Render produces the quote as plain text ready to paste into a chat
// message. The output is deterministic: same inputs, same bytes. A client
// name and at least one line are required; that an anonymous or empty quote
// cannot go out is a domain rule, so it is enforced here and not left to
// the caller.
func (q *Quote) Render(cat Catalog, profile BusinessProfile, fmtr money.Formatter) (string, error) {
	if q.Client == "" {
		return "", &catalog.ValidationError{Field: "cliente", Reason: "es requerido"}
	}
	if len(q.Lines) == 0 {
		return "", &catalog.ValidationError{Field: "productos", Reason: "el presupuesto necesita al menos un producto"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* Presupuesto\n", profile.Name)
	b.WriteString(divider + "\n\n")
	fmt.Fprintf(&b, "*Fecha de entrega:* %s\n", displayDate(q.DeliveryDate))
	fmt.Fprintf(&b, "*Cliente:* %s\n\n", q.Client)
	b.WriteString("*DETALLE DEL PEDIDO:*\n")
	b.WriteString(divider + "\n\n")

	for _, l := range q.Lines {
		p, ok := cat.FindProduct(l.ProductID)
		if !ok {
			continue
		}
		unitPrice := pricing.CostOfProduct(p, cat).SalePrice
		subtotal := unitPrice * float64(l.Quantity)

		fmt.Fprintf(&b, "   %s\n", p.Name)
		fmt.Fprintf(&b, "   Cantidad: %d\n", l.Quantity)
		fmt.Fprintf(&b, "   Precio unitario: %s\n", fmtr.Format(unitPrice))
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", fmtr.Format(subtotal))
	}

	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "*TOTAL: %s*\n", fmtr.Format(q.Total(cat)))
	b.WriteString(divider + "\n\n")
	b.WriteString("¡Gracias por elegirnos!")

	return b.String(), nil
}

// displayDate turns an ISO date (2025-04-30) into the day-first form used
// on the quote (30/04/2025). Anything else passes through untouched.
func displayDate(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
