package pattern

import "sort"

// Default is the pattern selected on startup
const Default = "rock"

var four4 = Meter{Beats: 4, Unit: 4}

// catalog contains all built-in patterns keyed by ID
var catalog = map[string]*Pattern{
	"rock": build("rock", "Rock", four4, 16, map[Voice]string{
		Kick:  "|x---|----|x-x-|----|",
		Snare: "|----|x---|----|x---|",
		HiHat: "|x-x-|x-x-|x-x-|x-x-|",
	}),
	"funk": build("funk", "Funk", four4, 16, map[Voice]string{
		Kick:  "|x--x|--x-|--x-|-x--|",
		Snare: "|----|x--x|-x--|x---|",
		HiHat: "|xxxx|xxxx|xxxx|xxxx|",
		Rim:   "|----|----|----|---x|",
	}),
	"hiphop": build("hiphop", "Hip Hop", four4, 16, map[Voice]string{
		Kick:  "|x---|---x|--x-|----|",
		Snare: "|----|x---|----|x---|",
		HiHat: "|x-x-|x-x-|x-x-|x-xx|",
		Clap:  "|----|x---|----|x---|",
	}),
	"disco": build("disco", "Disco", four4, 16, map[Voice]string{
		Kick:  "|x---|x---|x---|x---|",
		Snare: "|----|x---|----|x---|",
		HiHat: "|--x-|--x-|--x-|--x-|",
		Clap:  "|----|x---|----|x---|",
	}),
	"bossa": build("bossa", "Bossa Nova", four4, 16, map[Voice]string{
		Kick:  "|x--x|x--x|x--x|x--x|",
		HiHat: "|x-x-|x-x-|x-x-|x-x-|",
		Rim:   "|x--x|--x-|--x-|-x--|",
	}),
	"waltz": build("waltz", "Waltz", Meter{Beats: 3, Unit: 4}, 12, map[Voice]string{
		Kick:  "|x---|----|----|",
		Snare: "|----|x---|x---|",
		HiHat: "|x-x-|x-x-|x-x-|",
	}),
	"shuffle": build("shuffle", "Shuffle", Meter{Beats: 12, Unit: 8}, 16, map[Voice]string{
		Kick:  "|x---|----|x--x|----|",
		Snare: "|----|x---|----|x---|",
		HiHat: "|x-xx|-xx-|xx-x|x-x-|",
	}),
}

// Names returns the sorted list of pattern IDs
func Names() []string {
	names := make([]string, 0, len(catalog))
	for id := range catalog {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// Get returns a pattern by ID
func Get(id string) (*Pattern, bool) {
	p, ok := catalog[id]
	return p, ok
}

// MustGet returns a pattern by ID, falling back to Default
func MustGet(id string) *Pattern {
	if p, ok := catalog[id]; ok {
		return p
	}
	return catalog[Default]
}
