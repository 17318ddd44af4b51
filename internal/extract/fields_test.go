package extract

import (
	"math"
	"testing"
)

func TestExtractAmountShekelSymbol(t *testing.T) {
	fields := Extract(`סה"כ לתשלום: ₪1,234.56`)
	if fields.Amount == nil {
		t.Fatal("expected amount")
	}
	if *fields.Amount != 1234.56 {
		t.Fatalf("expected 1234.56, got %v", *fields.Amount)
	}
	if fields.Confidence["amount"] != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", fields.Confidence["amount"])
	}
}

func TestExtractAmountCurrencyWord(t *testing.T) {
	fields := Extract(`לתשלום 250.00 ש"ח בלבד`)
	if fields.Amount == nil {
		t.Fatal("expected amount")
	}
	if *fields.Amount != 250.00 {
		t.Fatalf("expected 250.00, got %v", *fields.Amount)
	}
	if fields.Confidence["amount"] != 0.75 {
		t.Fatalf("expected confidence 0.75, got %v", fields.Confidence["amount"])
	}
}

func TestExtractAmountLargestWins(t *testing.T) {
	// A line item with a currency symbol must not beat a larger bare total.
	fields := Extract("פריט ₪50.00\nשורת סיכום 1000.00")
	if fields.Amount == nil {
		t.Fatal("expected amount")
	}
	if *fields.Amount != 1000.00 {
		t.Fatalf("expected 1000.00, got %v", *fields.Amount)
	}
	if got := fields.Confidence["amount"]; math.Abs(got-0.45) > 1e-9 {
		t.Fatalf("expected confidence 0.45, got %v", got)
	}
}

func TestExtractDateFourDigitYear(t *testing.T) {
	fields := Extract("תאריך: 15/03/2024")
	if fields.Date == nil {
		t.Fatal("expected date")
	}
	if *fields.Date != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %q", *fields.Date)
	}
	if fields.Confidence["date"] != 0.85 {
		t.Fatalf("expected confidence 0.85, got %v", fields.Confidence["date"])
	}
}

func TestExtractDateTwoDigitYear(t *testing.T) {
	fields := Extract("תאריך 5/3/24")
	if fields.Date == nil {
		t.Fatal("expected date")
	}
	if *fields.Date != "2024-03-05" {
		t.Fatalf("expected 2024-03-05, got %q", *fields.Date)
	}
	if fields.Confidence["date"] != 0.75 {
		t.Fatalf("expected confidence 0.75, got %v", fields.Confidence["date"])
	}
}

func TestExtractDateHebrewMonth(t *testing.T) {
	fields := Extract("הופק 15 במרץ 2024")
	if fields.Date == nil {
		t.Fatal("expected date")
	}
	if *fields.Date != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %q", *fields.Date)
	}
	if fields.Confidence["date"] != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", fields.Confidence["date"])
	}
}

func TestExtractDateRejectsImpossible(t *testing.T) {
	fields := Extract("45/13/2024")
	if fields.Date != nil {
		t.Fatalf("expected no date, got %q", *fields.Date)
	}
}

func TestExtractVendorKeywordColon(t *testing.T) {
	fields := Extract("ספק: מרפאת שיניים כהן\nסכום 100")
	if fields.Vendor == nil {
		t.Fatal("expected vendor")
	}
	if *fields.Vendor != "מרפאת שיניים כהן" {
		t.Fatalf("unexpected vendor %q", *fields.Vendor)
	}
	if fields.Confidence["vendor"] != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", fields.Confidence["vendor"])
	}
}

func TestExtractVendorKeywordNextLine(t *testing.T) {
	fields := Extract("Vendor\nAcme Dental Supplies")
	if fields.Vendor == nil {
		t.Fatal("expected vendor")
	}
	if *fields.Vendor != "Acme Dental Supplies" {
		t.Fatalf("unexpected vendor %q", *fields.Vendor)
	}
	if fields.Confidence["vendor"] != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", fields.Confidence["vendor"])
	}
}

func TestExtractVendorFallbackFirstLines(t *testing.T) {
	fields := Extract("חשבונית 2024\nמעבדת שיניים לוי\nסכום 300")
	if fields.Vendor == nil {
		t.Fatal("expected vendor")
	}
	if *fields.Vendor != "מעבדת שיניים לוי" {
		t.Fatalf("unexpected vendor %q", *fields.Vendor)
	}
	if fields.Confidence["vendor"] != 0.5 {
		t.Fatalf("expected confidence 0.5, got %v", fields.Confidence["vendor"])
	}
}

func TestExtractDocNumberHebrew(t *testing.T) {
	fields := Extract("מס' חשבונית: 4521")
	if fields.DocNumber == nil {
		t.Fatal("expected doc number")
	}
	if *fields.DocNumber != "4521" {
		t.Fatalf("unexpected doc number %q", *fields.DocNumber)
	}
	if fields.Confidence["docNumber"] != 0.85 {
		t.Fatalf("expected confidence 0.85, got %v", fields.Confidence["docNumber"])
	}
}

func TestExtractDocNumberEnglish(t *testing.T) {
	fields := Extract("Invoice #INV-2024-001")
	if fields.DocNumber == nil {
		t.Fatal("expected doc number")
	}
	if *fields.DocNumber != "INV-2024-001" {
		t.Fatalf("unexpected doc number %q", *fields.DocNumber)
	}
	if fields.Confidence["docNumber"] != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", fields.Confidence["docNumber"])
	}
}

func TestExtractDocNumberBareHash(t *testing.T) {
	fields := Extract("קבלה # 789")
	if fields.DocNumber == nil {
		t.Fatal("expected doc number")
	}
	if *fields.DocNumber != "789" {
		t.Fatalf("unexpected doc number %q", *fields.DocNumber)
	}
	if fields.Confidence["docNumber"] != 0.55 {
		t.Fatalf("expected confidence 0.55, got %v", fields.Confidence["docNumber"])
	}
}

func TestExtractEmptyText(t *testing.T) {
	fields := Extract("")
	if !fields.IsEmpty() {
		t.Fatal("expected empty fields")
	}
	if len(fields.Confidence) != 0 {
		t.Fatalf("expected no confidence entries, got %v", fields.Confidence)
	}
}

func TestExtractFullReceipt(t *testing.T) {
	text := "מרפאת שיניים כהן\nחשבונית מס 4521\nתאריך: 15/03/2024\nטיפול שורש ₪850.00\n" + `סה"כ לתשלום: ₪1,350.00`
	fields := Extract(text)
	if fields.Amount == nil || *fields.Amount != 1350.00 {
		t.Fatalf("unexpected amount: %+v", fields.Amount)
	}
	if fields.Date == nil || *fields.Date != "2024-03-15" {
		t.Fatalf("unexpected date: %+v", fields.Date)
	}
	if fields.Vendor == nil || *fields.Vendor != "מרפאת שיניים כהן" {
		t.Fatalf("unexpected vendor: %+v", fields.Vendor)
	}
}
