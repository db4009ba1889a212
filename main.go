package main

import (
	"flag"
	"time"

	"postpulse/auth"
	"postpulse/crud"
	"postpulse/email"
	"postpulse/http"
	"postpulse/payment"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use
	// the default dev setup. In production the file is required.
	config := LoadConfig(*productionBool)

	// Open a database connection and execute migrations.
	dbConfig := config.Database
	db := NewDB(dbConfig.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Create the checkout client for the external payment provider.
	checkout := payment.NewStripeClient(
		config.Stripe.SecretKey,
		config.Stripe.SuccessURL,
		config.Stripe.CancelURL,
		config.Stripe.UnitAmount,
	)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithPayment(checkout),
	)
	must(err)

	// The session token issuer signs the tokens handed out by the password
	// login and registration paths.
	issuer := auth.NewTokenIssuer(config.Auth.Secret, time.Duration(config.Auth.ExpiryMinutes)*time.Minute)

	// The external identity verifier validates Google ID tokens. Without a
	// configured client id, only self-issued tokens are accepted.
	var verifier auth.IdentityVerifier
	if config.Google.ClientID != "" {
		verifier = auth.NewGoogleVerifier(config.Google.ClientID)
	}

	// Outbound mail is optional and best-effort.
	var mailer email.Sender
	if config.SendGrid.APIKey != "" {
		mailer = email.NewSendGridSender(config.SendGrid.APIKey, config.SendGrid.SenderName, config.SendGrid.SenderAddress)
	}

	// Set up a webserver.
	server, err := http.NewServer(config.IsProd(), services, issuer, verifier, mailer)
	must(err)

	// Serve the app.
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
