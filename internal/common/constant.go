package common

// AuthModeBackend marks a session record minted by the backend. It is the only
// auth mode the client currently writes; the slot exists so a future native
// build can mark locally minted sessions differently.
const AuthModeBackend = "backend"
