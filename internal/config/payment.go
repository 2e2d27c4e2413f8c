package config

import "time"

// WompiConfig configures the card 3-D-Secure gateway.  TokenURL issues
// client-credentials tokens; APIURL hosts the transaction endpoints.
type WompiConfig struct {
	TokenURL     string
	APIURL       string
	ClientID     string
	ClientSecret string
	Audience     string
	WebhookURL   string // public URL the gateway calls back (…/webhook-wompi)
	RedirectURL  string // where the shopper lands after 3DS
	NotifyPhone  string
	Timeout      time.Duration
}

// BlinkConfig configures the Lightning payment rail.
type BlinkConfig struct {
	GraphQLURL string
	APIKey     string
	Timeout    time.Duration
}

// PaymentConfig groups both payment collaborators.
type PaymentConfig struct {
	Wompi WompiConfig
	Blink BlinkConfig
}

func LoadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		Wompi: WompiConfig{
			TokenURL:     envStr("WOMPI_TOKEN_URL", "https://id.wompi.sv/connect/token"),
			APIURL:       envStr("WOMPI_URL", "https://api.wompi.sv"),
			ClientID:     envStr("WOMPI_CLIENT_ID", ""),
			ClientSecret: envStr("WOMPI_CLIENT_SECRET", ""),
			Audience:     envStr("WOMPI_AUDIENCE", "wompi_api"),
			WebhookURL:   envStr("API_URL", "http://localhost:8080") + "/webhook-wompi",
			RedirectURL:  envStr("WOMPI_REDIRECT_URL", "http://localhost:3000/account"),
			NotifyPhone:  envStr("WOMPI_NOTIFY_PHONE", ""),
			Timeout:      envDur("WOMPI_TIMEOUT", 15*time.Second),
		},
		Blink: BlinkConfig{
			GraphQLURL: envStr("BLINK_GRAPHQL_URL", "https://api.blink.sv/graphql"),
			APIKey:     envStr("BLINK_API_KEY", ""),
			Timeout:    envDur("BLINK_TIMEOUT", 15*time.Second),
		},
	}
}
