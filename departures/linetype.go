package departures

import (
	"regexp"
	"strings"
)

var (
	tramLine      = regexp.MustCompile(`^[1-9]\d?$`)
	metroLine     = regexp.MustCompile(`^M\d$`)
	urbanRailLine = regexp.MustCompile(`^S\d{1,2}$`)
	busLine       = regexp.MustCompile(`^\d{3}$`)
	nightLine     = regexp.MustCompile(`^N\d{2}$`)
	localLine     = regexp.MustCompile(`^L-?\d{1,2}$`)

	// Service types ignore case; icons do not.
	metroLineFold     = regexp.MustCompile(`(?i)^M\d$`)
	urbanRailLineFold = regexp.MustCompile(`(?i)^S\d{1,2}$`)
)

// lineTypeByPrefix maps the first character of a Warsaw line number to its service type.
var lineTypeByPrefix = map[string]string{
	"1": "Normal bus",
	"2": "Normal bus",
	"3": "Normal periodic bus",
	"4": "Fast periodic bus",
	"5": "Fast bus",
	"6": "Unknown bus",
	"7": "Zone normal bus",
	"8": "Zone periodic bus",
	"9": "Special bus",
	"C": "Cemetery bus",
	"E": "Express periodic bus",
	"L": "Local suburban bus",
	"N": "Night bus",
	"Z": "Replacement line",
	"T": "Tram line",
	"M": "Metro line",
	"S": "Urban rail",
}

// LineType returns a human readable service type for a Warsaw line number.
func LineType(line string) string {
	switch {
	case line == "":
		return "unknown"
	case tramLine.MatchString(line):
		return "Tram line"
	case metroLineFold.MatchString(line):
		return "Metro line"
	case urbanRailLineFold.MatchString(line):
		return "Urban rail"
	}
	if t, ok := lineTypeByPrefix[strings.ToUpper(line[:1])]; ok {
		return t
	}
	return "unknown"
}

// LineIcon returns the MDI icon name used for a line.
func LineIcon(line string) string {
	switch {
	case tramLine.MatchString(line):
		return "mdi:tram"
	case busLine.MatchString(line), nightLine.MatchString(line), localLine.MatchString(line):
		return "mdi:bus"
	case urbanRailLine.MatchString(line):
		return "mdi:train"
	case metroLine.MatchString(line):
		return "mdi:train-variant"
	}
	return "mdi:bus"
}

// VehicleMode maps a line to a SIRI VehicleMode value.
func VehicleMode(line string) string {
	switch LineType(line) {
	case "Tram line":
		return "tram"
	case "Metro line":
		return "metro"
	case "Urban rail":
		return "rail"
	}
	return "bus"
}
