// Package dispatch turns a build event into at most one notification.
//
// A Dispatcher gates on the notify preferences, resolves the request against
// the global defaults, looks up the topic token and hands the payload to a
// Sender. Send failures are logged and reported; they only become errors when
// the request asks for failOnError. Every attempt is tagged with a
// correlation id that appears in its log lines and in the returned Report.
//
// Host code depends only on the small DefaultsSource, TokenSource and Sender
// interfaces, so the CLI, tests and future integrations can swap each piece.
package dispatch
