package gemini

// Collect exposes collect for testing.
var Collect = collect
