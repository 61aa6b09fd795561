package notification

import (
	"fmt"
	"path"

	"github.com/sisl/eshop/internal/domain/trade"
)

// QuotationRequest builds the operations email announcing a submitted quotation,
// with the rendered PDF attached under its document file name
func QuotationRequest(q *trade.Quotation, mailbox, documentKey string, pdf []byte) *Message {
	return &Message{
		To:      []string{mailbox},
		Subject: "Discount request for " + q.FirstProductName(),
		Body: fmt.Sprintf("User %s requested a multi-line discount.\nQuotation ID: %s\n\nPlease find the attached PDF for full details.",
			q.DisplayName(), q.ID),
		Attachments: []Attachment{{
			Name:        path.Base(documentKey),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
}
