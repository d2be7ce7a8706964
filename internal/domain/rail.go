// domain/rail.go
package domain

type RailCategory int

const (
	RailBank RailCategory = iota
	RailMobileMoney
	RailCrypto
)

func (c RailCategory) String() string {
	switch c {
	case RailBank:
		return "bank"
	case RailMobileMoney:
		return "mobile_money"
	case RailCrypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// ParseRailCategory maps the backend's category label onto the closed enum.
func ParseRailCategory(s string) (RailCategory, bool) {
	switch s {
	case "bank":
		return RailBank, true
	case "mobile_money", "mobilemoney", "ussd":
		return RailMobileMoney, true
	case "crypto":
		return RailCrypto, true
	default:
		return 0, false
	}
}

// RailDescriptor describes how to pay into a deposit destination. It is
// sourced from the backend per deposit account and the client only renders
// it; no field is ever rewritten locally.
type RailDescriptor struct {
	Category             RailCategory      `json:"category"`
	Fields               map[string]string `json:"fields,omitempty"`
	DialCode             string            `json:"dial_code,omitempty"`
	WalletAddress        string            `json:"wallet_address,omitempty"`
	Network              string            `json:"network,omitempty"`
	FreeTextInstructions string            `json:"instructions,omitempty"`
}
