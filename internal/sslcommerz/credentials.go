package sslcommerz

const (
	sandboxBaseURL    = "https://sandbox.sslcommerz.com"
	productionBaseURL = "https://securepay.sslcommerz.com"

	paymentPath    = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"
	refundPath     = "/validator/api/merchantTransIDvalidationAPI.php"
)

// Credentials is the store's credential bundle. It is built once at startup
// and never mutated; the base URL is derived from the sandbox flag and is
// not independently settable.
type Credentials struct {
	StoreID       string
	StorePassword string
	Sandbox       bool
	Currency      string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	IPNURL        string

	baseURL string
}

func NewCredentials(storeID, storePassword string, sandbox bool, currency, successURL, failURL, cancelURL, ipnURL string) Credentials {
	base := productionBaseURL
	if sandbox {
		base = sandboxBaseURL
	}
	return Credentials{
		StoreID:       storeID,
		StorePassword: storePassword,
		Sandbox:       sandbox,
		Currency:      currency,
		SuccessURL:    successURL,
		FailURL:       failURL,
		CancelURL:     cancelURL,
		IPNURL:        ipnURL,
		baseURL:       base,
	}
}

// BaseURL returns the gateway host selected by the sandbox flag.
func (c Credentials) BaseURL() string {
	return c.baseURL
}
