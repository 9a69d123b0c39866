package yfinance

// yfError is the error object Yahoo embeds in an otherwise 200 response.
type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
