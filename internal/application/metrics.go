package application

import "expvar"

// Counters exposed on /api/debug/vars.
var (
	metricRegistrations = expvar.NewInt("users_registered_total")
	metricLogins        = expvar.NewInt("logins_total")
	metricLoginFailures = expvar.NewInt("login_failures_total")
	metricFollows       = expvar.NewInt("follows_total")
	metricUnfollows     = expvar.NewInt("unfollows_total")
)
