package generator

import (
	"math/rand"
	"strings"
)

var (
	adjectives = []string{
		"Awesome", "Ergonomic", "Fantastic", "Generic", "Gorgeous", "Handcrafted",
		"Handmade", "Incredible", "Intelligent", "Licensed", "Practical", "Refined",
		"Rustic", "Sleek", "Small", "Tasty", "Unbranded",
	}
	materials = []string{
		"Concrete", "Cotton", "Fresh", "Frozen", "Granite", "Metal", "Plastic",
		"Rubber", "Soft", "Steel", "Wooden",
	}
	nouns = []string{
		"Bacon", "Ball", "Bike", "Car", "Chair", "Cheese", "Chicken", "Chips",
		"Computer", "Fish", "Gloves", "Hat", "Keyboard", "Mouse", "Pants", "Pizza",
		"Salad", "Sausages", "Shirt", "Shoes", "Soap", "Table", "Towels", "Tuna",
	}
)

func pick(r *rand.Rand, words []string) string {
	return words[r.Intn(len(words))]
}

// productName returns a name like "Rustic Granite Chair"
func productName(r *rand.Rand) string {
	return strings.Join([]string{pick(r, adjectives), pick(r, materials), pick(r, nouns)}, " ")
}

// pools hold the words lines are built from. Their size is chosen so that
// the number of distinct payloads stays below the number of lines, which
// makes duplicated payloads with different numbers likely.
type pools struct {
	products   []string
	adjectives []string
	materials  []string
}

func newPools(r *rand.Rand, size int) *pools {
	p := &pools{
		products:   make([]string, size),
		adjectives: make([]string, size),
		materials:  make([]string, size),
	}
	for i := 0; i < size; i++ {
		p.products[i] = productName(r)
		p.adjectives[i] = pick(r, adjectives)
		p.materials[i] = pick(r, materials)
	}
	return p
}
