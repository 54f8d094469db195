package nosqlerr

// SDKVersion is the process-wide SDK version string, embedded in every
// error message and in the User-Agent header the transport sends
// (spec §9: "SDK version and user-agent strings are process-wide
// constants populated at build time").
const SDKVersion = "1.0.0"

// UserAgent is the HTTP User-Agent header value sent with every request.
const UserAgent = "nosql-go-sdk/" + SDKVersion
