// Package styles holds the closed set of storytelling styles a transcript
// can be rewritten in. Every style maps to a plain text prompt template file
// curated by the developers; there is no user supplied style.
package styles

import (
	"fmt"
	"path/filepath"

	"github.com/aurwrite/aurwrite/pkg/utils"
	"github.com/spf13/viper"
)

// ErrUnknownStyle is returned for any name outside the catalog.
var ErrUnknownStyle = fmt.Errorf("unknown style")

var styleFiles = map[string]string{
	"Fairy Tale":      "fairytale.txt",
	"News Article":    "news.txt",
	"Stand-Up Comedy": "comedy.txt",
	"Horror":          "horror.txt",
}

// Names in the order they are offered to the user.
var names = []string{"Fairy Tale", "News Article", "Stand-Up Comedy", "Horror"}

type Catalog struct {
	dir string
}

func NewCatalog() *Catalog {
	dir := viper.GetString("AURWRITE_STYLES_DIR")
	if dir == "" {
		dir = "styles"
	}
	return &Catalog{dir: dir}
}

// NewCatalogAt builds a catalog over an explicit styles directory.
func NewCatalogAt(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Names returns the closed set of style names, in stable order.
func (c *Catalog) Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Prompt returns the trimmed template text for the given style name.
// An unknown name fails. A missing or unreadable template file also fails:
// that is a deployment error, the catalog ships with the binary.
func (c *Catalog) Prompt(name string) (string, error) {
	file, ok := styleFiles[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}

	text, err := utils.LoadText(filepath.Join(c.dir, file))
	if err != nil {
		return "", fmt.Errorf("style template for %q: %w", name, err)
	}
	return text, nil
}
