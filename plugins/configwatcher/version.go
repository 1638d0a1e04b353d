package configwatcher

// Version is the current version of the configwatcher trailpack.
const Version = "1.0.0"
