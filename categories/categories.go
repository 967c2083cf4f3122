// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package categories holds the category deck and random draws from it.
package categories

import "github.com/guykrinsky/tierlist/identity"

// Categories is the full deck shown during category selection.
var Categories = []string{
	// Real-life chaos
	"Things you bring to a funeral",
	"Things you'd bring to a desert island",
	"Things you say when you're late",
	"Things you buy when you're sad",
	"Things you regret ordering online",
	"Things you hide before guests arrive",
	"Things that fall out of your pocket",
	"Things you google before bed",
	"Things you pretend to understand",
	"Things you say when you stub your toe",
	"Things you accidentally leave in the car",
	"Things that magically disappear at home",
	"Things you clean only when people come over",

	// Family comedy
	"Things to say at your grandmother's birthday",
	"Gifts you give your grandmother",
	"Things your grandmother keeps 'just in case'",
	"Things your grandmother cooks in ridiculous amounts",
	"Things your grandmother thinks are dangerous",
	"Things your mom warns you about",
	"Things your dad explains too aggressively",

	// Awkward social situations
	"Things to say on a first date",
	"Things NOT to say on a first date",
	"Things you say when you forget someone's name",
	"Things you say when someone shows you their baby",
	"Things people say at parties to sound interesting",
	"Things you say when the group photo is bad",
	"Things you pretend you've watched",
	"Things you say to avoid helping someone move",
	"Things you say when you don't want dessert",

	// Chaotic behavior
	"Things you do when you're bored",
	"Things you do when you're angry",
	"Things you do when no one is watching",
	"Things you eat because you're too lazy to cook",
	"Things you do during a Zoom call",
	"Things you say when WiFi stops working",
	"Things you keep in your car for no reason",
	"Things you do in the shower while thinking",
	"Things you do instead of sleeping",
}

// DefaultDrawCount is how many suggestions the selection screen shows.
const DefaultDrawCount = 3

// Random returns count distinct categories in random order.
// count values outside [1, len(Categories)] fall back to DefaultDrawCount.
func Random(count int) []string {
	if count < 1 || count > len(Categories) {
		count = DefaultDrawCount
	}
	return identity.Shuffle(Categories)[:count]
}
