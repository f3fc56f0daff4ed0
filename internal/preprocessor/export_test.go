package preprocessor

// TickAligned exposes tickAligned to the external test package.
var TickAligned = tickAligned
