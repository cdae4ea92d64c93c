package models

// APIClient is a named bearer-token consumer of the HTTP bridge.
type APIClient struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	KeyHash string `json:"-"`
}
