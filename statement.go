package bankxlive

import (
	"context"
	"io"

	"github.com/go-pdf/fpdf"
)

var statementCols = []struct {
	title string
	width float64
	align string
}{
	{"Date", 30, "L"},
	{"Reference", 38, "L"},
	{"Type", 30, "L"},
	{"Dir", 10, "C"},
	{"Counterparty", 28, "L"},
	{"Amount", 32, "R"},
	{"Status", 22, "L"},
}

func (s *serviceImpl) Statement(ctx context.Context, w io.Writer, req AccountReq) error {
	acct, err := s.store.Accounts.Get(req.AcctID)
	if err != nil {
		return err
	}
	txns, err := s.store.Ledger.ByAccount(req.AcctID, OrderAsc)
	if err != nil {
		return err
	}
	if err = renderStatement(w, acct, txns); err != nil {
		s.log.Err(err).Str("method", "statement").Str("acctID", req.AcctID).Msg("error rendering statement")
		return ErrInternalServer
	}
	return nil
}

func renderStatement(w io.Writer, acct *Account, txns []Transaction) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Account statement "+acct.AcctID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Account holder: "+acct.FullName)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Account number: "+acct.AcctID)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range statementCols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, t := range txns {
		dir, party := "OUT", t.To
		if t.To == acct.AcctID {
			dir, party = "IN", t.From
		}
		if party == "" {
			party = "-"
		}
		ref := t.Reference
		if ref == "" {
			ref = t.ID.String()
		}
		row := []string{
			t.CreatedAt.Format("2006-01-02 15:04"),
			ref,
			string(t.Kind),
			dir,
			party,
			t.Amount.StringFixed(2),
			string(t.Status),
		}
		for i, c := range statementCols {
			pdf.CellFormat(c.width, 6, row[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(txns) == 0 {
		pdf.CellFormat(190, 6, "No transactions", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Closing balance: NGN "+acct.Balance.StringFixed(2))

	return pdf.Output(w)
}
