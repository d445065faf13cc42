package r2index

// Version is the library version reported in the default user agent.
const Version = "0.3.0"

// DefaultUserAgent identifies this library when recording downloads.
const DefaultUserAgent = "elaunira-r2index-go/" + Version
