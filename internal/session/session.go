// Package session holds the client's view of the currently authenticated
// user. The snapshot is populated by the login/signup flow and the mount-time
// profile probe, replaced wholesale on every successful fetch, and cleared on
// logout or a 401.
package session
