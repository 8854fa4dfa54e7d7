// Package email delivers outbound site mail: the Insights campaign emails, the
// newsletter PDF and the contact-form notification.
//
// Delivery goes through a Sender (SES, Resend or a logging sender for local
// development). Mailer composes messages on top of a Sender and appends the
// HMAC-signed unsubscribe footer to every subscriber-facing message.
package email
