// internal/words/words.go

// Package words is the offline word pool used to seed lobby item queues
// and to bias generated words toward natural English letter frequency.
package words

import (
	"math/rand"
	"strings"
)

// Tier selects how far down the pools a draw may reach. Higher tiers
// include every easier pool.
type Tier int

const (
	Easy Tier = iota
	Medium
	Hard
)

var easyWords = []string{
	"Apple", "Banana", "Orange", "Grape", "Lemon", "Peach", "Cherry", "Melon",
	"Dog", "Cat", "Horse", "Sheep", "Rabbit", "Mouse", "Duck", "Frog",
	"Chair", "Table", "Window", "Door", "Clock", "Lamp", "Mirror", "Pillow",
	"Book", "Pencil", "Paper", "Scissors", "Bottle", "Spoon", "Plate", "Candle",
	"Tree", "Flower", "Grass", "Cloud", "River", "Mountain", "Beach", "Stone",
	"Shoe", "Hat", "Glove", "Sock", "Button", "Ring", "Umbrella", "Ladder",
	"Bread", "Cheese", "Butter", "Honey", "Carrot", "Potato", "Tomato", "Onion",
	"Ball", "Kite", "Drum", "Bell",
}

var mediumWords = []string{
	"Anchor", "Compass", "Lantern", "Barrel", "Hammock", "Pulley", "Funnel", "Gutter",
	"Falcon", "Badger", "Otter", "Heron", "Beetle", "Lizard", "Walrus", "Ferret",
	"Violin", "Trumpet", "Accordion", "Harp", "Cymbal", "Banjo", "Flute", "Organ",
	"Cactus", "Fern", "Willow", "Thistle", "Clover", "Ivy", "Moss", "Bramble",
	"Chisel", "Trowel", "Spanner", "Pliers", "Crowbar", "Mallet", "Rasp", "Vice",
}

var hardWords = []string{
	"Sundial", "Astrolabe", "Gargoyle", "Portcullis", "Turret", "Obelisk", "Plinth", "Cornice",
	"Pangolin", "Axolotl", "Tapir", "Ibex", "Cormorant", "Stoat", "Capercaillie", "Lamprey",
	"Theodolite", "Sextant", "Micrometer", "Gyroscope", "Pendulum", "Barometer", "Voltmeter", "Hygrometer",
	"Samphire", "Hellebore", "Foxglove", "Hawthorn", "Juniper", "Mistletoe", "Bracken", "Gorse",
	"Thimble", "Bellows", "Whetstone", "Loom", "Spindle", "Anvil", "Forge", "Quern",
}

// pool returns the cumulative word list for a tier.
func pool(tier Tier) []string {
	out := append([]string(nil), easyWords...)
	if tier >= Medium {
		out = append(out, mediumWords...)
	}
	if tier >= Hard {
		out = append(out, hardWords...)
	}
	return out
}

// Select draws count distinct words from the tier's pool in random order.
// Fewer are returned if the pool runs out.
func Select(tier Tier, count int) []string {
	return SelectUnique(nil, tier, count)
}

// SelectUnique draws count distinct words not present in exclude.
func SelectUnique(exclude []string, tier Tier, count int) []string {
	candidates := pool(tier)
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	out := make([]string, 0, count)
	for _, w := range candidates {
		if len(out) >= count {
			break
		}
		if containsFold(exclude, w) || containsFold(out, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// letterWeights approximates English initial-letter frequency. Weighted
// draws keep generated item words from clustering on rare letters.
var letterWeights = map[rune]int{
	'a': 8, 'b': 2, 'c': 3, 'd': 4, 'e': 12, 'f': 2, 'g': 2, 'h': 6,
	'i': 7, 'j': 1, 'k': 1, 'l': 4, 'm': 3, 'n': 7, 'o': 8, 'p': 2,
	'q': 1, 'r': 6, 's': 6, 't': 9, 'u': 3, 'v': 2, 'w': 2, 'x': 1,
	'y': 2, 'z': 1,
}

// WeightedLetters draws count letters with frequency-weighted probability.
// Duplicates are allowed.
func WeightedLetters(count int) []string {
	total := 0
	for _, w := range letterWeights {
		total += w
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		pick := rand.Intn(total)
		for r := 'a'; r <= 'z'; r++ {
			pick -= letterWeights[r]
			if pick < 0 {
				out = append(out, string(r))
				break
			}
		}
	}
	return out
}
