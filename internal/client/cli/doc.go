// Package cli implements the interactive front end of the site client: a
// read-eval-print loop over the auth, dashboard, two-factor, and account
// security services. It owns all terminal I/O; the services stay free of it.
package cli
