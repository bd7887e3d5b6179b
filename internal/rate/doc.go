// Package rate implements Redis fixed-window counters for login and refresh
// throttling.
//
// Keys, all under the configured prefix:
//   - rl:login:<email>          failed logins per email
//   - rl:login-ip:<ip>:<email>  failed logins per email from one IP
//   - rl:refresh:<user id>      refresh calls per user
package rate
