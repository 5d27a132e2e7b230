package entities

// UserInfo is the display data a provider may show the payer before confirming a payment.
type UserInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}
