// Package generator supplies new decorative elements from a remote image service.
//
// A Provider returns an Image or an error; any error means "no image", and the
// caller falls back to a placeholder. Remote talks to the image service directly,
// Endpoint goes through a running tinsel server's /api/generate-element.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Category is one of the fixed element kinds. The empty Category means "any".
type Category string

const (
	Tree        Category = "tree"
	Santa       Category = "santa"
	Snowman     Category = "snowman"
	Reindeer    Category = "reindeer"
	Gift        Category = "gift"
	Elf         Category = "elf"
	Candy       Category = "candy"
	Star        Category = "star"
	Bells       Category = "bells"
	Stocking    Category = "stocking"
	Gingerbread Category = "gingerbread"
	Sleigh      Category = "sleigh"
)

var categories = []Category{
	Tree, Santa, Snowman, Reindeer, Gift, Elf,
	Candy, Star, Bells, Stocking, Gingerbread, Sleigh,
}

const illustration = ", children's illustration style, bright colors, high quality"

var prompts = map[Category]string{
	Tree:        "Beautiful decorated Christmas tree with colorful ornaments, twinkling lights, star on top, magical sparkles, festive, joyful" + illustration,
	Santa:       "Jolly Santa Claus with big smile, red suit, white beard, carrying presents, magical sparkles, friendly, cheerful" + illustration,
	Snowman:     "Happy snowman with carrot nose, coal eyes, red scarf, top hat, snowflakes falling, winter wonderland, joyful" + illustration,
	Reindeer:    "Cute reindeer with red nose, antlers, Christmas bells, magical sparkles, friendly expression, flying through sky" + illustration,
	Gift:        "Beautifully wrapped Christmas present with big bow, colorful wrapping paper, ribbons, magical sparkles, festive" + illustration,
	Elf:         "Cheerful Christmas elf with pointy hat, green outfit, helping with toys, big smile, magical workshop" + illustration,
	Candy:       "Giant candy cane, peppermint swirl, red and white stripes, magical sparkles, delicious looking, festive" + illustration,
	Star:        "Bright shining Christmas star, golden glow, magical sparkles, twinkling lights, festive" + illustration,
	Bells:       "Shiny Christmas bells with red bows, golden color, ringing with musical notes, magical sparkles, festive" + illustration,
	Stocking:    "Colorful Christmas stocking filled with gifts and candy, hung by fireplace, cozy, festive" + illustration,
	Gingerbread: "Adorable gingerbread man with icing smile, candy buttons, waving, magical sparkles, delicious looking" + illustration,
	Sleigh:      "Santa's sleigh filled with presents, golden runners, magical sparkles, flying through starry night sky" + illustration,
}

// NegativePrompt steers generations away from unwanted moods.
const NegativePrompt = "scary, dark, gloomy, violent, sad, ugly, distorted"

// Categories returns the twelve categories in a stable order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory validates raw. Blank input yields the empty Category.
func ParseCategory(raw string) (Category, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", nil
	}
	c := Category(trimmed)
	if _, ok := prompts[c]; !ok {
		return "", fmt.Errorf("unknown element type %q", raw)
	}
	return c, nil
}

// Pick returns hint when set, otherwise a uniformly random category.
func Pick(hint Category, rng *rand.Rand) Category {
	if hint != "" {
		return hint
	}
	if rng == nil {
		return categories[rand.IntN(len(categories))]
	}
	return categories[rng.IntN(len(categories))]
}

// Prompt returns the generation prompt for c, defaulting to the tree prompt.
func Prompt(c Category) string {
	if p, ok := prompts[c]; ok {
		return p
	}
	return prompts[Tree]
}
