package quorum

// Version is the library release version.
const Version = "0.3.0"
