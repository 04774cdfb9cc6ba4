package notify

import (
	"fmt"
	"strings"
)

// FormatDigest renders a digest into a platform-neutral message.
func FormatDigest(d *Digest) Message {
	msg := Message{
		Title: fmt.Sprintf("Studio review digest, %s", d.GeneratedAt.Format("Mon 2 Jan")),
	}

	var lines []string
	if d.UnlinkedCount > 0 {
		line := fmt.Sprintf("%d unlinked communication(s) awaiting review", d.UnlinkedCount)
		if d.OldestUnlinked != nil {
			line += fmt.Sprintf(" (oldest from %s)", d.OldestUnlinked.Format("2 Jan"))
		}
		lines = append(lines, line)
	}
	for _, p := range d.StaleProposals {
		when := "never"
		if p.LastContactDate != nil {
			when = p.LastContactDate.Format("2 Jan")
		}
		lines = append(lines, fmt.Sprintf("proposal %s (%s), last contact %s", p.Code, p.Client, when))
	}
	for _, inv := range d.OverdueInvoices {
		balance := inv.InvoiceAmount - inv.PaymentAmount
		lines = append(lines, fmt.Sprintf("invoice %s overdue since %s, balance %.2f",
			inv.Number, inv.DueDate.Format("2 Jan"), balance))
	}
	msg.Body = strings.Join(lines, "\n")

	msg.Fields = []Field{
		{Name: "Unlinked", Value: fmt.Sprintf("%d", d.UnlinkedCount)},
		{Name: "Stale proposals", Value: fmt.Sprintf("%d", len(d.StaleProposals))},
		{Name: "Overdue invoices", Value: fmt.Sprintf("%d", len(d.OverdueInvoices))},
	}
	return msg
}
