package cli

import (
	"receipt-generator/internal/core/domain"

	"github.com/spf13/cobra"
)

// sampleRequest is the fixed receipt used for smoke-testing a template
// and layout.
var sampleRequest = domain.ReceiptRequest{
	ReceiptID:    "0010",
	Date:         "2024-01-15",
	ReceivedFrom: "John Smith",
	ForField:     "Web Development Services",
	ChequeNo:     "CHQ123456",
	Amount:       "5000.00",
	PaymentCash:  true,
}

type receiptFlags struct {
	req    domain.ReceiptRequest
	sample bool
}

func (f *receiptFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.req.ReceiptID, "id", "", "Receipt id (default: next counter value)")
	fs.StringVar(&f.req.Date, "date", "", "Receipt date")
	fs.StringVar(&f.req.ReceivedFrom, "from", "", "Payer name")
	fs.StringVar(&f.req.ForField, "for", "", "What the payment is for")
	fs.StringVar(&f.req.ChequeNo, "cheque-no", "", "Cheque number")
	fs.StringVar(&f.req.Amount, "amount", "", "Amount, without currency prefix")
	fs.BoolVar(&f.req.PaymentCash, "cash", false, "Paid in cash")
	fs.BoolVar(&f.req.PaymentCheque, "cheque", false, "Paid by cheque")
	fs.BoolVar(&f.sample, "sample", false, "Use the built-in sample receipt; other field flags override it")
}

// request returns the receipt described by the flags. With --sample, only
// flags the user actually set replace the sample values.
func (f *receiptFlags) request(cmd *cobra.Command) domain.ReceiptRequest {
	if !f.sample {
		return f.req.Normalized()
	}

	r := sampleRequest
	fs := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("id", &r.ReceiptID, f.req.ReceiptID)
	set("date", &r.Date, f.req.Date)
	set("from", &r.ReceivedFrom, f.req.ReceivedFrom)
	set("for", &r.ForField, f.req.ForField)
	set("cheque-no", &r.ChequeNo, f.req.ChequeNo)
	set("amount", &r.Amount, f.req.Amount)
	if fs.Changed("cash") {
		r.PaymentCash = f.req.PaymentCash
	}
	if fs.Changed("cheque") {
		r.PaymentCheque = f.req.PaymentCheque
	}
	return r.Normalized()
}
